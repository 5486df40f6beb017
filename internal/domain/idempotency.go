package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultIdempotencyTTL is how long a recorded command result is replayed
// before the key may be reused.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyRecord is the stored outcome of a command execution, unique
// per (tenant, key). Created once, read many times, expires after the TTL.
type IdempotencyRecord struct {
	TenantID       string
	IdempotencyKey string
	CommandType    string
	PayloadHash    string
	Result         []byte
	ExecutedAt     time.Time
	ExpiresAt      time.Time
}

// IsExpired reports whether the record is past its TTL and should be
// treated as a miss.
func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// HashPayload fingerprints a command payload so a key reuse with a
// different payload can be distinguished from a legitimate replay.
func HashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
