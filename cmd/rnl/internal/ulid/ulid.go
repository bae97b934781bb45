// Package ulid generates and validates the identifiers of stored log entries.
// ULIDs sort by creation time, so listing by id lists by arrival.
package ulid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalidULID indicates that a ULID string is malformed or invalid
var ErrInvalidULID = errors.New("invalid ULID format")

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// Generate creates a new ULID for the current time. IDs generated within the
// same millisecond are strictly increasing.
func Generate() string {
	return GenerateWithTime(time.Now())
}

// GenerateWithTime creates a new ULID for t.
func GenerateWithTime(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Validate checks if a string is a valid ULID (26 characters, base32 encoded)
func Validate(str string) error {
	if len(str) != ulid.EncodedSize {
		return fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidULID, ulid.EncodedSize, len(str))
	}
	if _, err := ulid.ParseStrict(str); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidULID, err)
	}
	return nil
}
