package passhash

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestVerify_Errors(t *testing.T) {
	if _, err := VerifyPassword("", "x"); err == nil {
		t.Fatalf("want error on empty hash")
	}
	if _, err := VerifyPassword("$argon2id$bad", "x"); err == nil {
		t.Fatalf("want error on bad format")
	}
	if _, err := VerifyPassword("$argon2id$v=19$m=1024,t=1,p=1$!!!$abc", "x"); err == nil {
		t.Fatalf("want error on bad salt encoding")
	}
	if _, err := VerifyPassword("$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA", "x"); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("want ErrIncompatible, got %v", err)
	}
	if _, err := VerifyPassword("$2b$04$short", "x"); err == nil {
		t.Fatalf("want error on truncated bcrypt digest")
	}
}

func TestVerify_RejectsOversizedMemoryCost(t *testing.T) {
	d, err := (Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}).Hash("pw")
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(d, "m=64,", "m=4294967295,", 1)
	if _, err := VerifyPassword(tampered, "pw"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}
	atLimit := strings.Replace(d, "m=64,", fmt.Sprintf("m=%d,", MaxMemory+1), 1)
	if _, err := VerifyPassword(atLimit, "pw"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat just above the limit, got %v", err)
	}
}

func TestParams_UnknownAlgorithm(t *testing.T) {
	if _, err := (Params{Algorithm: "md5"}).Hash("x"); !errors.Is(err, ErrUnknownAlgo) {
		t.Fatalf("want ErrUnknownAlgo, got %v", err)
	}
}

func TestHasher_RoundTripAndCancel(t *testing.T) {
	h := NewHasher(Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}, 1)
	ctx := context.Background()
	d, err := h.Hash(ctx, "pw")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := h.Verify(ctx, "pw", d)
	if err != nil || !ok {
		t.Fatalf("verify: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	// hold the only slot so Acquire has to observe the cancelled context
	if err := h.sem.Acquire(ctx, 1); err != nil {
		t.Fatal(err)
	}
	defer h.sem.Release(1)
	if _, err := h.Hash(cancelled, "pw"); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
