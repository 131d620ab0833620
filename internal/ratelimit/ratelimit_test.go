package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := range 3 {
		if !krl.Allow("user-a") {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if krl.Allow("user-a") {
		t.Fatal("request beyond burst should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("user-a") {
		t.Fatal("first request for user-a should pass")
	}
	if krl.Allow("user-a") {
		t.Fatal("second request for user-a should be denied")
	}
	if !krl.Allow("user-b") {
		t.Fatal("user-b has its own bucket and should pass")
	}
}

func TestWaitRespectsContext(t *testing.T) {
	krl := New(0.001, 1)
	defer krl.Stop()

	// Drain the bucket.
	if !krl.Allow("key") {
		t.Fatal("initial token should be available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := krl.Wait(ctx, "key"); err == nil {
		t.Fatal("Wait should fail when context expires before a token is available")
	}
}

func TestTokensRefill(t *testing.T) {
	krl := New(100, 1)
	defer krl.Stop()

	if !krl.Allow("key") {
		t.Fatal("initial token should be available")
	}
	time.Sleep(25 * time.Millisecond)
	if !krl.Allow("key") {
		t.Fatal("token should have refilled at 100 rps")
	}
}
