package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

// PasswordHasher hashes and verifies passwords with bcrypt. At most
// `workers` bcrypt computations run at once; callers over the limit wait
// for a slot or for their context to end.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted

	decoyOnce sync.Once
	decoy     []byte
}

// NewPasswordHasher validates cost (0 selects bcrypt.DefaultCost) and sizes
// the pool (<= 0 selects runtime.NumCPU).
func NewPasswordHasher(cost, workers int) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(int64(workers))}, nil
}

// Cost returns the bcrypt cost used for new hashes.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash of password.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is empty", common.ErrValidation)
	}
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: password exceeds %d bytes", common.ErrValidation, MaxPasswordBytes)
	}

	var hash []byte
	err := h.run(ctx, func() (err error) {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), h.cost)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", common.ErrHashing, err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A malformed hash or a
// cancelled context is a mismatch.
func (h *PasswordHasher) Verify(ctx context.Context, plain, hash string) bool {
	err := h.run(ctx, func() error {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	})
	return err == nil
}

// VerifyDummy burns the same work as Verify against a throwaway hash, so a
// login for an unknown user takes as long as one with a wrong password.
func (h *PasswordHasher) VerifyDummy(ctx context.Context, plain string) {
	h.decoyOnce.Do(func() {
		seed := make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return
		}
		h.decoy, _ = bcrypt.GenerateFromPassword(seed, h.cost)
	})
	if h.decoy == nil {
		return
	}
	_ = h.Verify(ctx, plain, string(h.decoy))
}

func (h *PasswordHasher) run(ctx context.Context, fn func() error) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer h.sem.Release(1)
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
