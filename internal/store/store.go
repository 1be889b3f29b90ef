// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/interviewd/internal/domain"
)

// ErrDuplicateEmail is returned by CreateUser when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// MetadataUpdate is a partial update of session metadata. Nil fields
// are left untouched; updated_at is always refreshed.
type MetadataUpdate struct {
	QuestionCount      *int
	CurrentPhase       *string
	InterviewCompleted *bool
	ManuallyEnded      *bool
}

// Repository defines the interface for persisting sessions and users.
// Lookups return (nil, nil) when the record does not exist.
type Repository interface {
	// InsertSession stores a newly created session.
	InsertSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by its session ID.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// AppendMessage appends one message to the session's history.
	AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error

	// UpdateMetadata applies a partial metadata update.
	UpdateMetadata(ctx context.Context, sessionID string, update MetadataUpdate) error

	// AppendMessageAndUpdateMetadata performs both mutations in a
	// single transaction. This is the finalization path for streamed
	// turns, where the accumulated reply and the counter advance must
	// land together or not at all.
	AppendMessageAndUpdateMetadata(ctx context.Context, sessionID string, msg domain.Message, update MetadataUpdate) error

	// CreateUser stores a new user account.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLastLogin records a successful login.
	UpdateLastLogin(ctx context.Context, email string, at time.Time) error

	// AddSessionToUser links a session ID to a user's session list.
	// Adding an already-linked session is a no-op.
	AddSessionToUser(ctx context.Context, email, sessionID string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
