package passhash

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Hasher bounds the number of concurrent hash computations. Each argon2id
// call allocates Params.Memory KiB, so unbounded parallel logins could
// exhaust the process.
type Hasher struct {
	params Params
	sem    *semaphore.Weighted
}

// NewHasher returns a Hasher running at most maxConcurrent computations at once.
func NewHasher(params Params, maxConcurrent int64) *Hasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Hasher{params: params, sem: semaphore.NewWeighted(maxConcurrent)}
}

func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	return h.params.Hash(password)
}

func (h *Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	return VerifyPassword(encoded, password)
}
