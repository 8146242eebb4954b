package kv

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/kv/memory"
)

// failingStore returns errors on every operation, simulating an
// unavailable backing store.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store unavailable")
}
func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("store unavailable")
}
func (failingStore) Close() error { return nil }

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadMissingKeyReturnsInitial(t *testing.T) {
	s := memory.New()
	got := Load(context.Background(), s, "absent", payload{Name: "default"})
	if got.Name != "default" {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestLoadMalformedReturnsInitial(t *testing.T) {
	s := memory.New()
	if err := s.Set(context.Background(), "k", []byte("{not json")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := Load(context.Background(), s, "k", payload{Count: 7})
	if got.Count != 7 {
		t.Fatalf("expected initial value on malformed payload, got %+v", got)
	}
}

func TestLoadStoreFailureReturnsInitial(t *testing.T) {
	got := Load(context.Background(), failingStore{}, "k", payload{Name: "fallback"})
	if got.Name != "fallback" {
		t.Fatalf("expected initial value on store failure, got %+v", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := memory.New()
	want := payload{Name: "x", Count: 3}
	if err := Save(context.Background(), s, "k", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := Load(context.Background(), s, "k", payload{})
	if got != want {
		t.Fatalf("round trip mismatch: %+v != %+v", got, want)
	}
}

func TestSaveFailureSurfacesError(t *testing.T) {
	if err := Save(context.Background(), failingStore{}, "k", payload{}); err == nil {
		t.Fatalf("expected error from failing store")
	}
}
