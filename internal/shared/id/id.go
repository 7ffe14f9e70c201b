// Package id generates identifiers for sessions and rows.
package id

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// SessionPrefix marks session identifiers.
const SessionPrefix = "session_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewSessionID returns "session_" followed by a ULID: a millisecond timestamp
// and a random suffix, sortable by creation time.
func NewSessionID() string {
	return NewSessionIDAt(time.Now())
}

func NewSessionIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return SessionPrefix + ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// IsSessionID reports whether s has the session prefix and a parseable ULID.
func IsSessionID(s string) bool {
	rest, ok := strings.CutPrefix(s, SessionPrefix)
	if !ok {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}

// NewRowID returns a random UUID for primary keys.
func NewRowID() string {
	return uuid.NewString()
}
