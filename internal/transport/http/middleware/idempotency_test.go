package middleware

import (
	"context"
	"testing"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func TestIdempotencyStoreWithoutDatabase(t *testing.T) {
	var store *IdempotencyStore
	stored, found, err := store.Check(context.Background(), "u1", "tickets.create", "k1", RequestHash([]byte("{}")))
	if err != nil || found || stored != nil {
		t.Fatalf("expected a nil store to be a no-op, got %v %v %v", stored, found, err)
	}
	if err := store.Save(context.Background(), "u1", "tickets.create", "k1", "h", nil); err != nil {
		t.Fatalf("expected nil store save to be a no-op, got %v", err)
	}
}
