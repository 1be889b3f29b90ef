package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/interviewd/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
	// Serializes read-modify-write cycles on a session row. Message
	// history lives in a JSON column, so concurrent appends without
	// this would lose writes and trip SQLITE_BUSY.
	sessionMu sync.Mutex
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		role_id TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		question_count INTEGER NOT NULL DEFAULT 0,
		current_phase TEXT NOT NULL DEFAULT 'greeting',
		interview_completed INTEGER NOT NULL DEFAULT 0,
		manually_ended INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);

	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		name TEXT,
		sessions_json TEXT NOT NULL DEFAULT '[]',
		is_active INTEGER NOT NULL DEFAULT 1,
		is_verified INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_login INTEGER
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertSession stores a newly created session.
func (s *SQLiteStore) InsertSession(ctx context.Context, session *domain.Session) error {
	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	query := `
	INSERT INTO sessions (session_id, role_id, messages_json, question_count, current_phase,
		interview_completed, manually_ended, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		session.SessionID, session.RoleID, string(messages),
		session.Metadata.QuestionCount, session.Metadata.CurrentPhase,
		boolToInt(session.Metadata.InterviewCompleted), boolToInt(session.Metadata.ManuallyEnded),
		session.Metadata.CreatedAt.Unix(), session.Metadata.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its session ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, role_id, messages_json, question_count, current_phase,
		       interview_completed, manually_ended, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session domain.Session
	var messagesJSON string
	var completed, manual int
	var createdAt, updatedAt int64

	err := row.Scan(
		&session.SessionID, &session.RoleID, &messagesJSON,
		&session.Metadata.QuestionCount, &session.Metadata.CurrentPhase,
		&completed, &manual, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(messagesJSON), &session.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	session.Metadata.InterviewCompleted = completed != 0
	session.Metadata.ManuallyEnded = manual != 0
	session.Metadata.CreatedAt = time.Unix(createdAt, 0).UTC()
	session.Metadata.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &session, nil
}

// AppendMessage appends one message to the session's history.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	return s.mutateSession(ctx, sessionID, msg, nil)
}

// UpdateMetadata applies a partial metadata update.
func (s *SQLiteStore) UpdateMetadata(ctx context.Context, sessionID string, update MetadataUpdate) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sets, args := metadataSets(update)
	args = append(args, sessionID)

	query := "UPDATE sessions SET " + strings.Join(sets, ", ") + " WHERE session_id = ?"
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}

// AppendMessageAndUpdateMetadata performs both mutations atomically.
func (s *SQLiteStore) AppendMessageAndUpdateMetadata(ctx context.Context, sessionID string, msg domain.Message, update MetadataUpdate) error {
	return s.mutateSession(ctx, sessionID, msg, &update)
}

// mutateSession appends a message and optionally applies a metadata
// update inside one transaction. SQLITE_BUSY conflicts are retried with
// a short linear backoff before giving up.
func (s *SQLiteStore) mutateSession(ctx context.Context, sessionID string, msg domain.Message, update *MetadataUpdate) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		lastErr = s.mutateSessionOnce(ctx, sessionID, msg, update)
		if lastErr == nil || !isSQLiteConflict(lastErr) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return lastErr
}

func (s *SQLiteStore) mutateSessionOnce(ctx context.Context, sessionID string, msg domain.Message, update *MetadataUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var messagesJSON string
	row := tx.QueryRowContext(ctx, `SELECT messages_json FROM sessions WHERE session_id = ?`, sessionID)
	if err := row.Scan(&messagesJSON); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("session %s not found", sessionID)
		}
		return fmt.Errorf("read messages: %w", err)
	}

	var messages []domain.Message
	if err := json.Unmarshal([]byte(messagesJSON), &messages); err != nil {
		return fmt.Errorf("unmarshal messages: %w", err)
	}
	messages = append(messages, msg)
	updated, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	sets := []string{"messages_json = ?"}
	args := []any{string(updated)}
	if update != nil {
		moreSets, moreArgs := metadataSets(*update)
		sets = append(sets, moreSets...)
		args = append(args, moreArgs...)
	} else {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().Unix())
	}
	args = append(args, sessionID)

	query := "UPDATE sessions SET " + strings.Join(sets, ", ") + " WHERE session_id = ?"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// metadataSets builds SET clauses for the non-nil fields of an update,
// always refreshing updated_at.
func metadataSets(update MetadataUpdate) ([]string, []any) {
	var sets []string
	var args []any
	if update.QuestionCount != nil {
		sets = append(sets, "question_count = ?")
		args = append(args, *update.QuestionCount)
	}
	if update.CurrentPhase != nil {
		sets = append(sets, "current_phase = ?")
		args = append(args, *update.CurrentPhase)
	}
	if update.InterviewCompleted != nil {
		sets = append(sets, "interview_completed = ?")
		args = append(args, boolToInt(*update.InterviewCompleted))
	}
	if update.ManuallyEnded != nil {
		sets = append(sets, "manually_ended = ?")
		args = append(args, boolToInt(*update.ManuallyEnded))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().Unix())
	return sets, args
}

// CreateUser stores a new user account.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	sessions, err := json.Marshal(user.Sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	var lastLogin any
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.Unix()
	}

	query := `
	INSERT INTO users (email, password_hash, name, sessions_json, is_active, is_verified, created_at, last_login)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, string(sessions),
		boolToInt(user.IsActive), boolToInt(user.IsVerified),
		user.CreatedAt.Unix(), lastLogin,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "constraint failed: users.email") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT email, password_hash, name, sessions_json, is_active, is_verified, created_at, last_login
		FROM users WHERE email = ?`

	row := s.db.QueryRowContext(ctx, query, email)

	var user domain.User
	var name sql.NullString
	var sessionsJSON string
	var active, verified int
	var createdAt int64
	var lastLogin sql.NullInt64

	err := row.Scan(&user.Email, &user.PasswordHash, &name, &sessionsJSON,
		&active, &verified, &createdAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	if err := json.Unmarshal([]byte(sessionsJSON), &user.Sessions); err != nil {
		return nil, fmt.Errorf("unmarshal sessions: %w", err)
	}
	user.Name = name.String
	user.IsActive = active != 0
	user.IsVerified = verified != 0
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	if lastLogin.Valid {
		t := time.Unix(lastLogin.Int64, 0).UTC()
		user.LastLogin = &t
	}

	return &user, nil
}

// UpdateLastLogin records a successful login.
func (s *SQLiteStore) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE email = ?`, at.Unix(), email)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %s not found", email)
	}
	return nil
}

// AddSessionToUser links a session ID to a user's session list.
func (s *SQLiteStore) AddSessionToUser(ctx context.Context, email, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var sessionsJSON string
	row := tx.QueryRowContext(ctx, `SELECT sessions_json FROM users WHERE email = ?`, email)
	if err := row.Scan(&sessionsJSON); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("user %s not found", email)
		}
		return fmt.Errorf("read sessions: %w", err)
	}

	var sessions []string
	if err := json.Unmarshal([]byte(sessionsJSON), &sessions); err != nil {
		return fmt.Errorf("unmarshal sessions: %w", err)
	}
	if slices.Contains(sessions, sessionID) {
		return nil
	}
	sessions = append(sessions, sessionID)
	updated, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET sessions_json = ? WHERE email = ?`, string(updated), email); err != nil {
		return fmt.Errorf("update sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isSQLiteConflict reports whether the error is a SQLITE_BUSY or
// "database is locked" concurrency error worth retrying.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
