package storage

import (
	"testing"

	"github.com/neurobin-systems/neurobin/internal/capture"
)

func TestSessionStore(t *testing.T) {
	store := New()

	session := capture.NewSession("abc", nil)
	store.Set("abc", session)

	got, exists := store.Get("abc")
	if !exists {
		t.Fatal("session not found after Set")
	}
	if got.ID() != "abc" {
		t.Errorf("session id = %q, want abc", got.ID())
	}

	if len(store.GetAll()) != 1 {
		t.Errorf("GetAll returned %d sessions, want 1", len(store.GetAll()))
	}

	store.Delete("abc")
	if _, exists := store.Get("abc"); exists {
		t.Error("session still present after Delete")
	}

	// Deleting a missing session is a no-op.
	store.Delete("never-existed")
}

func TestCloseReleasesAllSessions(t *testing.T) {
	store := New()
	store.Set("a", capture.NewSession("a", nil))
	store.Set("b", capture.NewSession("b", nil))

	store.Close()

	// Sessions stay listed; Close only releases resources.
	if len(store.GetAll()) != 2 {
		t.Errorf("GetAll returned %d sessions after Close, want 2", len(store.GetAll()))
	}
}
