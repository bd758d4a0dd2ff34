package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("update account", cause)

	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be unwrappable")
	}

	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "update account" {
		t.Fatalf("expected PersistenceError with op, got %#v", err)
	}
}

func TestNewPersistenceError_KeepsDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrAccountNotFound)

	err := NewPersistenceError("get account", wrapped)
	if err != wrapped {
		t.Fatalf("domain errors should pass through untouched, got %v", err)
	}
	if NewPersistenceError("noop", nil) != nil {
		t.Fatal("nil stays nil")
	}
}
