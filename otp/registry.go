// Package otp holds the ephemeral one-time-password state that gates lead
// persistence. Records live only between code issuance and verification and
// are never written to the document store.
package otp

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/khalsa-property/backend/models"
)

// DefaultTTL is the validity window advertised to the applicant.
const DefaultTTL = 10 * time.Minute

// Pending is an issued, not-yet-consumed verification record. At most one
// exists per email; re-issuing replaces it.
type Pending struct {
	Code     string          `json:"code"`
	Form     models.LeadForm `json:"form"`
	IssuedAt time.Time       `json:"issuedAt"`
}

// Registry is a key-value abstraction over pending verifications, keyed by
// the applicant's email. Implementations decide where the records live
// (process memory, redis with a real TTL).
type Registry interface {
	// Issue generates a fresh 6-digit code and stores it with the submitted
	// form, replacing any pending record for the same key.
	Issue(ctx context.Context, key string, form models.LeadForm) (string, error)

	// Peek returns the pending record for key, or ok=false when none exists
	// or the record has expired. It never consumes the record.
	Peek(ctx context.Context, key string) (*Pending, bool, error)

	// Consume removes the pending record for key. Removing an absent key is
	// a no-op.
	Consume(ctx context.Context, key string) error
}

// Matches reports whether a submitted code matches the pending record. Codes
// are compared as integers, so "099999" never matches and "0100000" equals
// "100000".
func (p *Pending) Matches(submitted string) bool {
	got, err := strconv.Atoi(submitted)
	if err != nil {
		return false
	}
	want, err := strconv.Atoi(p.Code)
	if err != nil {
		return false
	}
	return got == want
}

// generateCode returns a 6-digit code uniform over [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
