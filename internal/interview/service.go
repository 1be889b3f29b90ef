package interview

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/interviewd/internal/ai"
	"github.com/ashureev/interviewd/internal/domain"
	"github.com/ashureev/interviewd/internal/prompts"
	"github.com/ashureev/interviewd/internal/store"
	"github.com/google/uuid"
)

// Canned assistant messages. The completion and farewell texts are part
// of the interview script; the apology texts keep the conversation
// coherent when the upstream call fails mid-interview.
const (
	completionMessage = "Thank you for completing the full interview! You've answered all questions across " +
		"different difficulty levels. This gives us a comprehensive understanding of your expertise. " +
		"We appreciate your time and detailed responses. We'll review your performance and get back to you soon! 🎯✨"

	manualEndMessage = "Thank you for taking the time to interview with us! While we didn't complete all " +
		"questions, you've provided valuable insights. We appreciate your participation and will be in " +
		"touch regarding next steps. Have a great day! 🎯"

	// ServiceErrorMessage is persisted as the assistant turn when a
	// unary upstream call fails so the session can continue later.
	ServiceErrorMessage = "Sorry, I'm experiencing some technical difficulties right now. Please try again in a moment."

	streamErrorMessage     = "Sorry, I encountered a technical issue. Please try sending your message again."
	streamRateLimitMessage = "Rate limit exceeded. Please wait a moment before continuing the conversation."

	startGreeting = "Hello! I'm ready to start my interview."
)

// finalizeTimeout bounds the post-stream persistence write, which runs
// on a detached context because the request context is usually gone by
// then (client disconnect ends the stream too).
const finalizeTimeout = 10 * time.Second

// Gateway generates replies from the conversation history. Implemented
// by ai.Client; faked in tests.
type Gateway interface {
	GenerateReply(ctx context.Context, history []domain.Message, phaseContext string) (string, error)
	StreamReply(ctx context.Context, history []domain.Message, phaseContext string) iter.Seq2[string, error]
}

// TurnResult is the outcome of one accepted interview turn.
type TurnResult struct {
	Response           string `json:"response"`
	InterviewCompleted bool   `json:"interview_completed,omitempty"`
}

// Status is the caller-facing session progress view.
type Status struct {
	QuestionCount      int     `json:"question_count"`
	CurrentPhase       string  `json:"current_phase"`
	TotalQuestions     int     `json:"total_questions"`
	InterviewCompleted bool    `json:"interview_completed"`
	ManuallyEnded      bool    `json:"manually_ended"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// Service orchestrates interview turns: session state validation,
// counter/phase progression, gateway calls and persistence. It is the
// sole writer of session state.
type Service struct {
	repo   store.Repository
	gw     Gateway
	flow   *Flow
	logger *slog.Logger
}

// NewService creates the interview service.
func NewService(repo store.Repository, gw Gateway, flow *Flow, logger *slog.Logger) *Service {
	if flow == nil {
		flow = DefaultFlow()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, gw: gw, flow: flow, logger: logger}
}

// Flow exposes the phase ladder in use.
func (s *Service) Flow() *Flow {
	return s.flow
}

// CreateSession creates a session seeded with the role's system prompt.
// Unknown roles fall back to the default role prompt.
func (s *Service) CreateSession(ctx context.Context, roleID string) (string, error) {
	sessionID := uuid.NewString()
	now := time.Now().UTC()

	session := &domain.Session{
		SessionID: sessionID,
		RoleID:    roleID,
		Messages:  []domain.Message{domain.NewMessage(domain.RoleSystem, prompts.Lookup(roleID))},
		Metadata: domain.SessionMetadata{
			CurrentPhase: s.flow.PhaseFor(0),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	if err := s.repo.InsertSession(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sessionID, nil
}

// StartInterview sends the scripted opening on the caller's behalf and
// returns the interviewer's greeting. The greeting counts as question 1.
func (s *Service) StartInterview(ctx context.Context, sessionID string) (string, error) {
	session, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return "", err
	}

	userMsg := domain.NewMessage(domain.RoleUser, startGreeting)
	if err := s.repo.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return "", fmt.Errorf("append start message: %w", err)
	}

	history := append(append([]domain.Message{}, session.Messages...), userMsg)
	reply, err := s.gw.GenerateReply(ctx, history, "")
	if err != nil {
		return "", err
	}

	count := 1
	phase := s.flow.PhaseFor(count)
	assistantMsg := domain.NewMessage(domain.RoleAssistant, reply)
	if err := s.repo.AppendMessageAndUpdateMetadata(ctx, sessionID, assistantMsg, store.MetadataUpdate{
		QuestionCount: &count,
		CurrentPhase:  &phase,
	}); err != nil {
		return "", fmt.Errorf("persist start reply: %w", err)
	}

	return reply, nil
}

// SendMessage runs one unary interview turn.
//
// The turn that reaches the total question budget completes the
// interview with the fixed completion message and makes no upstream
// call. A rate-limit rejection or configuration error leaves the
// appended user message in place but persists no assistant message; any
// other gateway failure persists the apology text so the conversation
// stays coherent, and still reports the failure to the caller.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	session, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := domain.NewMessage(domain.RoleUser, text)
	if err := s.repo.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	newCount := session.Metadata.QuestionCount + 1
	newPhase := s.flow.PhaseFor(newCount)

	if newCount >= s.flow.TotalQuestions() {
		if err := s.complete(ctx, sessionID, false, completionMessage); err != nil {
			return nil, err
		}
		return &TurnResult{Response: completionMessage, InterviewCompleted: true}, nil
	}

	history := append(append([]domain.Message{}, session.Messages...), userMsg)
	reply, err := s.gw.GenerateReply(ctx, history, s.phaseContext(newCount, newPhase))
	if err != nil {
		if isRejection(err) {
			// No assistant message is persisted; the user message stays
			// as the record of the attempt.
			return nil, err
		}
		s.logger.Error("upstream reply failed, persisting apology",
			"session_id", sessionID, "question", newCount, "error", err)
		apology := domain.NewMessage(domain.RoleAssistant, ServiceErrorMessage)
		if persistErr := s.repo.AppendMessage(ctx, sessionID, apology); persistErr != nil {
			s.logger.Error("failed to persist apology message", "session_id", sessionID, "error", persistErr)
		}
		return nil, err
	}

	assistantMsg := domain.NewMessage(domain.RoleAssistant, reply)
	if err := s.repo.AppendMessageAndUpdateMetadata(ctx, sessionID, assistantMsg, store.MetadataUpdate{
		QuestionCount: &newCount,
		CurrentPhase:  &newPhase,
	}); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	return &TurnResult{Response: reply}, nil
}

// StreamMessage runs one streamed interview turn. Validation and the
// user-message append happen before the sequence is returned, so
// NotFound / AlreadyCompleted reject the turn immediately.
//
// The returned sequence forwards chunks as they arrive without touching
// the store. Whether it ends by the upstream finishing, a mid-stream
// failure, or the consumer abandoning the range (client disconnect),
// the accumulated text is persisted exactly once, together with the
// counter advance, in one atomic write. A failure before any chunk
// substitutes a fixed apology as the sole chunk.
func (s *Service) StreamMessage(ctx context.Context, sessionID, text string) (iter.Seq2[string, error], error) {
	session, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := domain.NewMessage(domain.RoleUser, text)
	if err := s.repo.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	newCount := session.Metadata.QuestionCount + 1
	newPhase := s.flow.PhaseFor(newCount)

	if newCount >= s.flow.TotalQuestions() {
		if err := s.complete(ctx, sessionID, false, completionMessage); err != nil {
			return nil, err
		}
		return func(yield func(string, error) bool) {
			yield(completionMessage, nil)
		}, nil
	}

	history := append(append([]domain.Message{}, session.Messages...), userMsg)
	phaseContext := s.phaseContext(newCount, newPhase)

	var once sync.Once
	return func(yield func(string, error) bool) {
		var accumulated strings.Builder

		finalize := func() {
			once.Do(func() {
				s.finalizeStream(sessionID, accumulated.String(), newCount, newPhase)
			})
		}
		defer finalize()

		for chunk, err := range s.gw.StreamReply(ctx, history, phaseContext) {
			if err != nil {
				// Replace whatever accumulated with the fixed apology so
				// the persisted turn stays coherent, and surface the
				// same text to the client as the final chunk.
				msg := streamErrorMessage
				var rle *ai.RateLimitError
				if errors.As(err, &rle) {
					msg = streamRateLimitMessage
				}
				s.logger.Error("stream failed", "session_id", sessionID, "question", newCount, "error", err)
				accumulated.Reset()
				accumulated.WriteString(msg)
				yield(msg, nil)
				return
			}
			accumulated.WriteString(chunk)
			if !yield(chunk, nil) {
				// Consumer gone (client disconnect); finalize with what
				// was forwarded so far.
				return
			}
		}
	}, nil
}

// finalizeStream persists the accumulated streamed reply and the
// metadata advance in one atomic write. It runs on a detached context
// and logs (never re-raises) persistence failures: the stream to the
// client is already closed.
func (s *Service) finalizeStream(sessionID, content string, newCount int, newPhase string) {
	if strings.TrimSpace(content) == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	assistantMsg := domain.NewMessage(domain.RoleAssistant, content)
	if err := s.repo.AppendMessageAndUpdateMetadata(ctx, sessionID, assistantMsg, store.MetadataUpdate{
		QuestionCount: &newCount,
		CurrentPhase:  &newPhase,
	}); err != nil {
		s.logger.Error("failed to persist streamed turn", "session_id", sessionID, "error", err)
	}
}

// EndInterview manually completes the interview and returns the
// farewell message. Ending an already-completed session is a no-op that
// still returns the farewell.
func (s *Service) EndInterview(ctx context.Context, sessionID string) (string, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return "", ErrSessionNotFound
	}
	if session.Metadata.InterviewCompleted {
		return manualEndMessage, nil
	}

	if err := s.complete(ctx, sessionID, true, manualEndMessage); err != nil {
		return "", err
	}
	return manualEndMessage, nil
}

// History returns the session's messages with the system prompt
// excluded.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	visible := make([]domain.Message, 0, len(session.Messages))
	for _, m := range session.Messages {
		if m.Role != domain.RoleSystem {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

// Status returns current session progress. It is read-only: calling it
// repeatedly without an intervening turn returns identical output.
func (s *Service) Status(ctx context.Context, sessionID string) (*Status, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	return &Status{
		QuestionCount:      session.Metadata.QuestionCount,
		CurrentPhase:       s.flow.PhaseFor(session.Metadata.QuestionCount),
		TotalQuestions:     s.flow.TotalQuestions(),
		InterviewCompleted: session.Metadata.InterviewCompleted,
		ManuallyEnded:      session.Metadata.ManuallyEnded,
		ProgressPercentage: s.progress(session.Metadata.QuestionCount),
	}, nil
}

// Summaries builds per-session summaries for a user's session list.
// Sessions that no longer exist are skipped.
func (s *Service) Summaries(ctx context.Context, sessionIDs []string) ([]domain.SessionSummary, error) {
	summaries := make([]domain.SessionSummary, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		session, err := s.repo.GetSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", id, err)
		}
		if session == nil {
			continue
		}
		summaries = append(summaries, domain.SessionSummary{
			SessionID:          session.SessionID,
			RoleID:             session.RoleID,
			CreatedAt:          session.Metadata.CreatedAt,
			QuestionCount:      session.Metadata.QuestionCount,
			CurrentPhase:       session.Metadata.CurrentPhase,
			InterviewCompleted: session.Metadata.InterviewCompleted,
			ManuallyEnded:      session.Metadata.ManuallyEnded,
			ProgressPercentage: s.progress(session.Metadata.QuestionCount),
		})
	}
	return summaries, nil
}

// loadActive loads a session and rejects turns on missing or completed
// sessions with no state change.
func (s *Service) loadActive(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Metadata.InterviewCompleted {
		return nil, ErrInterviewCompleted
	}
	return session, nil
}

// complete marks the session completed and appends the closing
// assistant message in one atomic write.
func (s *Service) complete(ctx context.Context, sessionID string, manual bool, closing string) error {
	completed := true
	closingMsg := domain.NewMessage(domain.RoleAssistant, closing)
	if err := s.repo.AppendMessageAndUpdateMetadata(ctx, sessionID, closingMsg, store.MetadataUpdate{
		InterviewCompleted: &completed,
		ManuallyEnded:      &manual,
	}); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

func (s *Service) phaseContext(count int, phase string) string {
	return fmt.Sprintf("CURRENT STATUS: Question %d/%d, Phase: %s",
		count, s.flow.TotalQuestions(), strings.ToUpper(phase))
}

func (s *Service) progress(questionCount int) float64 {
	p := float64(questionCount) / float64(s.flow.TotalQuestions()) * 100
	if p > 100 {
		return 100
	}
	return p
}

// isRejection reports whether the gateway failure should reject the
// turn outright instead of being papered over with an apology turn:
// rate limiting (local or upstream) and missing configuration.
func isRejection(err error) bool {
	var rle *ai.RateLimitError
	return errors.As(err, &rle) || errors.Is(err, ai.ErrMissingAPIKey)
}
