package mask

import (
	"slices"
	"strings"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
)

// MatchMode selects how a normalized field name is compared with a token.
type MatchMode string

const (
	// MatchContains flags a field whose name contains a token anywhere.
	// Short tokens over-match: "pin" flags "pingback".
	MatchContains MatchMode = "contains"

	// MatchExact flags a field only when its name equals a token.
	MatchExact MatchMode = "exact"

	// MatchAffix flags a field whose name starts or ends with a token.
	MatchAffix MatchMode = "affix"
)

// Valid reports whether m is a known mode. The empty mode is valid and
// means MatchContains.
func (m MatchMode) Valid() bool {
	switch m {
	case "", MatchContains, MatchExact, MatchAffix:
		return true
	}
	return false
}

// Normalize lowercases name and strips '_' and '-'.
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// Classifier decides whether a field name is sensitive.
type Classifier struct {
	tokens []string
	mode   MatchMode
}

// NewClassifier builds the effective token set for p.
func NewClassifier(p Policy) *Classifier {
	set := make(map[string]struct{})
	if p.EnableDefaultMask {
		for _, f := range constants.DefaultSensitiveFields {
			set[Normalize(f)] = struct{}{}
		}
	}
	for _, f := range p.CustomFields {
		if n := Normalize(strings.TrimSpace(f)); n != "" {
			set[n] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(set))
	for t := range set {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)

	mode := p.MatchMode
	if mode == "" {
		mode = MatchContains
	}
	return &Classifier{tokens: tokens, mode: mode}
}

// Tokens returns the normalized sensitive tokens in sorted order.
func (c *Classifier) Tokens() []string {
	return slices.Clone(c.tokens)
}

// IsSensitive reports whether field names sensitive data.
func (c *Classifier) IsSensitive(field string) bool {
	name := Normalize(field)
	for _, t := range c.tokens {
		if c.matches(name, t) {
			return true
		}
	}
	return false
}

func (c *Classifier) matches(name, token string) bool {
	switch c.mode {
	case MatchExact:
		return name == token
	case MatchAffix:
		return strings.HasPrefix(name, token) || strings.HasSuffix(name, token)
	default:
		return strings.Contains(name, token)
	}
}
