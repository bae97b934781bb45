package mask

import (
	"os"
	"slices"
	"strings"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
)

// Policy is the immutable redaction configuration an Engine is built from.
type Policy struct {
	// EnableDefaultMask includes constants.DefaultSensitiveFields.
	EnableDefaultMask bool
	// CustomFields are extra field-name tokens.
	CustomFields []string
	MatchMode    MatchMode
	// MaxDepth bounds nesting accepted by FromAny.
	MaxDepth int
}

// DefaultPolicy enables the default tokens with substring matching.
func DefaultPolicy() Policy {
	return Policy{
		EnableDefaultMask: true,
		MatchMode:         MatchContains,
		MaxDepth:          constants.DefaultMaxDepth,
	}
}

func (p Policy) clone() Policy {
	p.CustomFields = slices.Clone(p.CustomFields)
	return p
}

// ParseEnabled interprets the default-mask switch. Only "false", in any
// case, disables it; unset and any other value enable it.
func ParseEnabled(raw string) bool {
	return !strings.EqualFold(strings.TrimSpace(raw), "false")
}

// ParseFields splits a comma separated field list, trimming and lowercasing
// each entry and dropping empty ones.
func ParseFields(raw string) []string {
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// LookupFunc reads a configuration variable. It has the shape of
// os.LookupEnv.
type LookupFunc func(key string) (string, bool)

var publicFallback = map[string]string{
	constants.EnvDefaultMask: constants.EnvDefaultMaskPublic,
	constants.EnvMaskFields:  constants.EnvMaskFieldsPublic,
}

// EnvLookup reads the process environment, falling back from the RNL_
// variables to their NEXT_PUBLIC_ counterparts.
func EnvLookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	if alt, ok := publicFallback[key]; ok {
		return os.LookupEnv(alt)
	}
	return "", false
}

// MapLookup serves variables from a fixed map.
func MapLookup(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}
