package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

func TestSessionStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		ok       bool
	}{
		{SessionNotCompleted, SessionCompleted, true},
		{SessionNotCompleted, SessionCanceled, true},
		{SessionCanceled, SessionCanceled, false},
		{SessionCompleted, SessionCanceled, false},
		{SessionCanceled, SessionCompleted, false},
		{SessionCanceled, SessionNotCompleted, false},
		{SessionNotCompleted, SessionNotCompleted, false},
	}
	for _, tc := range cases {
		err := tc.from.Transition(tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			continue
		}
		if assert.Error(t, err, "%s -> %s", tc.from, tc.to) {
			assert.Equal(t, appErrors.ErrInvalidStateTransition.Code, appErrors.FromError(err).Code)
		}
	}
}

func TestSessionStatusValid(t *testing.T) {
	assert.True(t, SessionCanceled.Valid())
	assert.False(t, SessionStatus("Done").Valid())
}
