package domain

import (
	"errors"
	"testing"
)

func TestSessionState_Transitions(t *testing.T) {
	tests := []struct {
		name string
		from SessionState
		to   SessionState
		want bool
	}{
		{"accept", SessionAwaitingConnection, SessionOpen, true},
		{"never opened", SessionAwaitingConnection, SessionClosed, true},
		{"next exchange", SessionOpen, SessionOpen, true},
		{"disconnect", SessionOpen, SessionClosing, true},
		{"release", SessionClosing, SessionClosed, true},
		{"skip closing", SessionOpen, SessionClosed, false},
		{"reopen", SessionClosing, SessionOpen, false},
		{"resume", SessionClosed, SessionOpen, false},
		{"restart", SessionClosed, SessionAwaitingConnection, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
			err := tt.from.ValidateTransition(tt.to)
			if tt.want && err != nil {
				t.Errorf("ValidateTransition() error = %v", err)
			}
			if !tt.want && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("ValidateTransition() error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestSessionState_String(t *testing.T) {
	if got := SessionClosing.String(); got != "Closing" {
		t.Errorf("String() = %s, want Closing", got)
	}
	if got := SessionState(42).String(); got != "Unknown" {
		t.Errorf("String() = %s, want Unknown", got)
	}
}
