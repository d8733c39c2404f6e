package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a random identifier for run records.
func NewID() string {
	return uuid.New().String()
}

// StableID derives a deterministic identifier from a tuple of key parts.
// The same parts always produce the same id, which is what makes filing
// and headline ingestion idempotent: a re-run writes to the same key.
func StableID(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
