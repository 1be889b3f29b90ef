package interview

import "errors"

var (
	// ErrSessionNotFound rejects a turn for an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInterviewCompleted rejects a turn sent after the session
	// reached its terminal state.
	ErrInterviewCompleted = errors.New("interview has already been completed")
)
