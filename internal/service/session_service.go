package service

import (
	"context"
	"errors"

	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/session"
	"github.com/quizbd/exam-portal/internal/store"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionService orchestrates exam sessions for the student API: it owns
// the manager and builds each session's dependency set.
type SessionService struct {
	store    *store.Store
	manager  *session.Manager
	notifier session.Notifier
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(st *store.Store, manager *session.Manager, notifier session.Notifier, log zerolog.Logger) *SessionService {
	return &SessionService{
		store:    st,
		manager:  manager,
		notifier: notifier,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// Start creates a session and selects the exam in one step: the HTTP world
// has no idle Landing screen, an attempt begins with an exam choice.
func (s *SessionService) Start(ctx context.Context, examID string) (session.Snapshot, error) {
	exam, ok := s.store.ExamByID(ctx, examID)
	if !ok {
		return session.Snapshot{}, ErrExamNotFound
	}

	sess := s.manager.Create(session.Deps{
		Store:    s.store,
		Notifier: s.notifier,
		Log:      s.log,
	})

	if err := sess.SelectExam(exam); err != nil {
		s.manager.Remove(sess.ID().String())
		return session.Snapshot{}, err
	}

	return sess.Snapshot(), nil
}

// SubmitInfo forwards the student's identity to the session. The returned
// map carries inline field errors; ErrAlreadyTaken means the session is now
// in its terminal Error state.
func (s *SessionService) SubmitInfo(ctx context.Context, sessionID string, info model.StudentInfo) (session.Snapshot, map[string]string, error) {
	sess, ok := s.manager.Get(sessionID)
	if !ok {
		return session.Snapshot{}, nil, ErrSessionNotFound
	}

	fields, err := sess.SubmitInfo(ctx, info)
	return sess.Snapshot(), fields, err
}

// Answer records the student's pick for the current question.
func (s *SessionService) Answer(sessionID string, optionIndex int) (session.Snapshot, error) {
	sess, ok := s.manager.Get(sessionID)
	if !ok {
		return session.Snapshot{}, ErrSessionNotFound
	}

	err := sess.SelectAnswer(optionIndex)
	return sess.Snapshot(), err
}

// Next advances the session, finishing the exam on the last question.
func (s *SessionService) Next(ctx context.Context, sessionID string) (session.Snapshot, error) {
	sess, ok := s.manager.Get(sessionID)
	if !ok {
		return session.Snapshot{}, ErrSessionNotFound
	}

	if _, err := sess.NextQuestion(ctx); err != nil {
		return sess.Snapshot(), err
	}
	return sess.Snapshot(), nil
}

// Home resets the session to Landing and drops it from the manager; the
// attempt's transient state is gone after this call.
func (s *SessionService) Home(sessionID string) error {
	sess, ok := s.manager.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	if err := sess.ReturnHome(); err != nil {
		return err
	}
	s.manager.Remove(sessionID)
	return nil
}

// Snapshot returns the current view of a session.
func (s *SessionService) Snapshot(sessionID string) (session.Snapshot, error) {
	sess, ok := s.manager.Get(sessionID)
	if !ok {
		return session.Snapshot{}, ErrSessionNotFound
	}
	return sess.Snapshot(), nil
}
