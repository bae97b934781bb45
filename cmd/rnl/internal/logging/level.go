package logging

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Level represents logging levels
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

// Enabled reports whether a message at msg passes a logger set to l.
func (l Level) Enabled(msg Level) bool {
	return msg.zerolog() >= l.zerolog()
}

// LevelForEnv is the level used when none is configured: production logs
// warnings and above, test only errors, anything else everything.
func LevelForEnv(env string) Level {
	switch strings.ToLower(env) {
	case "production":
		return LevelWarn
	case "test":
		return LevelError
	default:
		return LevelDebug
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
