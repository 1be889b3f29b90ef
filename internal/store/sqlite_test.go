package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/interviewd/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return repo
}

func testSession(id string) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		SessionID: id,
		RoleID:    "meta-ads-expert",
		Messages:  []domain.Message{domain.NewMessage(domain.RoleSystem, "You are an interviewer.")},
		Metadata: domain.SessionMetadata{
			CurrentPhase: "greeting",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	want := testSession("s-1")
	if err := repo.InsertSession(ctx, want); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected session, got nil")
	}
	if got.RoleID != want.RoleID {
		t.Errorf("Expected role %q, got %q", want.RoleID, got.RoleID)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != domain.RoleSystem {
		t.Errorf("Expected system message preserved, got %v", got.Messages)
	}
	if got.Metadata.CurrentPhase != "greeting" {
		t.Errorf("Expected greeting phase, got %q", got.Metadata.CurrentPhase)
	}
}

func TestGetSessionAbsent(t *testing.T) {
	repo := newTestStore(t)

	got, err := repo.GetSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for absent session, got %v", got)
	}
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.InsertSession(ctx, testSession("s-1")); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	if err := repo.AppendMessage(ctx, "s-1", domain.NewMessage(domain.RoleUser, "first")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := repo.AppendMessage(ctx, "s-1", domain.NewMessage(domain.RoleAssistant, "second")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got.Messages))
	}
	if got.Messages[1].Content != "first" || got.Messages[2].Content != "second" {
		t.Errorf("Expected append order preserved, got %v", got.Messages)
	}
}

func TestAppendMessageUnknownSession(t *testing.T) {
	repo := newTestStore(t)
	err := repo.AppendMessage(context.Background(), "missing", domain.NewMessage(domain.RoleUser, "hi"))
	if err == nil {
		t.Fatal("Expected error for unknown session")
	}
}

func TestUpdateMetadataPartial(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.InsertSession(ctx, testSession("s-1")); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	count := 5
	phase := "easy"
	if err := repo.UpdateMetadata(ctx, "s-1", MetadataUpdate{QuestionCount: &count, CurrentPhase: &phase}); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Metadata.QuestionCount != 5 || got.Metadata.CurrentPhase != "easy" {
		t.Errorf("Expected count=5 phase=easy, got %+v", got.Metadata)
	}
	if got.Metadata.InterviewCompleted {
		t.Error("Expected untouched fields preserved")
	}
}

func TestAppendMessageAndUpdateMetadataAtomic(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.InsertSession(ctx, testSession("s-1")); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	count := 2
	phase := "easy"
	msg := domain.NewMessage(domain.RoleAssistant, "next question")
	if err := repo.AppendMessageAndUpdateMetadata(ctx, "s-1", msg, MetadataUpdate{
		QuestionCount: &count,
		CurrentPhase:  &phase,
	}); err != nil {
		t.Fatalf("AppendMessageAndUpdateMetadata failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(got.Messages))
	}
	if got.Metadata.QuestionCount != 2 || got.Metadata.CurrentPhase != "easy" {
		t.Errorf("Expected metadata applied with message, got %+v", got.Metadata)
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.InsertSession(ctx, testSession("s-1")); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	const writers = 10
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			if err := repo.AppendMessage(ctx, "s-1", domain.NewMessage(domain.RoleUser, "m")); err != nil {
				t.Errorf("AppendMessage failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Messages) != writers+1 {
		t.Errorf("Expected %d messages, got %d", writers+1, len(got.Messages))
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	user := &domain.User{
		Email:        "a@example.com",
		PasswordHash: "hash",
		Sessions:     []string{},
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := repo.CreateUser(ctx, user); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("Expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRoundTripAndLastLogin(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	user := &domain.User{
		Email:        "a@example.com",
		PasswordHash: "hash",
		Name:         "Alex",
		Sessions:     []string{"s-1"},
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected user, got nil")
	}
	if got.Name != "Alex" || !got.IsActive || got.IsVerified {
		t.Errorf("Expected fields preserved, got %+v", got)
	}
	if got.LastLogin != nil {
		t.Error("Expected no last login yet")
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.UpdateLastLogin(ctx, "a@example.com", at); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}
	got, err = repo.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(at) {
		t.Errorf("Expected last login %v, got %v", at, got.LastLogin)
	}
}

func TestGetUserByEmailAbsent(t *testing.T) {
	repo := newTestStore(t)
	got, err := repo.GetUserByEmail(context.Background(), "missing@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for absent user, got %v", got)
	}
}

func TestAddSessionToUserIdempotent(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	user := &domain.User{
		Email:        "a@example.com",
		PasswordHash: "hash",
		Sessions:     []string{},
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.AddSessionToUser(ctx, "a@example.com", "s-1"); err != nil {
			t.Fatalf("AddSessionToUser failed: %v", err)
		}
	}
	if err := repo.AddSessionToUser(ctx, "a@example.com", "s-2"); err != nil {
		t.Fatalf("AddSessionToUser failed: %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if len(got.Sessions) != 2 || got.Sessions[0] != "s-1" || got.Sessions[1] != "s-2" {
		t.Errorf("Expected [s-1 s-2], got %v", got.Sessions)
	}
}
