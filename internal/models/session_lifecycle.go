package models

import (
	"fmt"

	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

// sessionTransitions lists the legal moves; Completed and Canceled are terminal.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionNotCompleted: {SessionCompleted, SessionCanceled},
}

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionNotCompleted, SessionCompleted, SessionCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates the move from s to next.
func (s SessionStatus) Transition(next SessionStatus) error {
	if !s.CanTransitionTo(next) {
		return appErrors.Clone(appErrors.ErrInvalidStateTransition, fmt.Sprintf("cannot move session from %s to %s", s, next))
	}
	return nil
}
