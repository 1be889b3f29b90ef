// Package domain contains core domain types for the interview server.
package domain

import (
	"time"
)

// Message roles as sent to the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a session's conversation history.
// History is append-only and order-significant: it is sent upstream
// as-is to build the model context.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// SessionMetadata tracks interview progression for a session.
// InterviewCompleted is monotonic: once set it is never cleared.
type SessionMetadata struct {
	QuestionCount      int       `json:"question_count"`
	CurrentPhase       string    `json:"current_phase"`
	InterviewCompleted bool      `json:"interview_completed"`
	ManuallyEnded      bool      `json:"manually_ended"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Session is one interview conversation. Messages[0] is always the
// role-specific system prompt seeded at creation.
type Session struct {
	SessionID string          `json:"session_id"`
	RoleID    string          `json:"role_id"`
	Messages  []Message       `json:"messages"`
	Metadata  SessionMetadata `json:"metadata"`
}

// SessionSummary is the per-session view returned in a user's session list.
type SessionSummary struct {
	SessionID          string    `json:"session_id"`
	RoleID             string    `json:"role_id"`
	CreatedAt          time.Time `json:"created_at"`
	QuestionCount      int       `json:"question_count"`
	CurrentPhase       string    `json:"current_phase"`
	InterviewCompleted bool      `json:"interview_completed"`
	ManuallyEnded      bool      `json:"manually_ended"`
	ProgressPercentage float64   `json:"progress_percentage"`
}
