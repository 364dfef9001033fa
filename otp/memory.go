package otp

import (
	"context"
	"sync"
	"time"

	"github.com/khalsa-property/backend/models"
)

// MemoryRegistry keeps pending verifications in a process-local map. State is
// lost on restart; applicants must request a new code.
type MemoryRegistry struct {
	mu      sync.Mutex
	pending map[string]Pending
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryRegistry{
		pending: make(map[string]Pending),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *MemoryRegistry) Issue(ctx context.Context, key string, form models.LeadForm) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Last write wins: a second request for the same email invalidates the
	// earlier code.
	r.pending[key] = Pending{Code: code, Form: form, IssuedAt: r.now()}
	return code, nil
}

func (r *MemoryRegistry) Peek(ctx context.Context, key string) (*Pending, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.pending[key]
	if !ok {
		return nil, false, nil
	}
	if r.now().Sub(rec.IssuedAt) > r.ttl {
		delete(r.pending, key)
		return nil, false, nil
	}
	return &rec, true, nil
}

func (r *MemoryRegistry) Consume(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, key)
	return nil
}
