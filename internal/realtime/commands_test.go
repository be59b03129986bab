package realtime

import (
	"errors"
	"testing"
)

func TestCommandStore_DefaultsToNormal(t *testing.T) {
	s := NewCommandStore()
	got, err := s.Resolve("s1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DisplayNormal {
		t.Errorf("command = %q, want %q", got, DisplayNormal)
	}
}

func TestCommandStore_StickyAcrossOmittedCommand(t *testing.T) {
	s := NewCommandStore()

	got, err := s.Resolve("s1", DisplayBlack)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DisplayBlack {
		t.Errorf("command = %q, want black", got)
	}

	// A follow-up patch without a command keeps black in effect.
	got, err = s.Resolve("s1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DisplayBlack {
		t.Errorf("sticky command = %q, want black", got)
	}

	got, err = s.Resolve("s1", DisplayNormal)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DisplayNormal {
		t.Errorf("command = %q, want normal after explicit reset", got)
	}
}

func TestCommandStore_SessionsIsolated(t *testing.T) {
	s := NewCommandStore()
	if _, err := s.Resolve("s1", DisplayFreeze); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got, err := s.Resolve("s2", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DisplayNormal {
		t.Errorf("other session command = %q, want normal", got)
	}
}

func TestCommandStore_InvalidCommand(t *testing.T) {
	s := NewCommandStore()
	if _, err := s.Resolve("s1", DisplayBlack); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	_, err := s.Resolve("s1", "strobe")
	if !errors.Is(err, ErrInvalidDisplayCommand) {
		t.Fatalf("err = %v, want ErrInvalidDisplayCommand", err)
	}

	// The stored command is untouched by the failed request.
	got, err := s.Resolve("s1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DisplayBlack {
		t.Errorf("command after invalid request = %q, want black", got)
	}
}

func TestCommandStore_Forget(t *testing.T) {
	s := NewCommandStore()
	if _, err := s.Resolve("s1", DisplayClear); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	s.Forget("s1")
	got, err := s.Resolve("s1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DisplayNormal {
		t.Errorf("command after forget = %q, want normal", got)
	}
}
