package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/session"
	"github.com/quizbd/exam-portal/internal/store"
	"github.com/rs/zerolog"
)

type noopNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *noopNotifier) Notify(context.Context, model.SyncPayload) {
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
}

func newSessionService(t *testing.T) (*SessionService, *store.Store, *session.Manager) {
	t.Helper()
	st := store.New(store.NewMemoryKV(), zerolog.Nop())
	exams := []model.Exam{
		{
			ID:     "exam_1",
			Title:  "Basics",
			Active: true,
			Questions: []model.Question{
				{ID: 1, Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0},
				{ID: 2, Text: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1},
			},
		},
		{ID: "exam_2", Title: "Paused", Active: false, Questions: []model.Question{
			{ID: 1, Text: "q", Options: []string{"a", "b"}, CorrectAnswer: 0},
		}},
	}
	if err := st.SaveExams(context.Background(), exams); err != nil {
		t.Fatal(err)
	}

	manager := session.NewManager(time.Hour, zerolog.Nop())
	svc := NewSessionService(st, manager, &noopNotifier{}, zerolog.Nop())
	return svc, st, manager
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	svc, _, manager := newSessionService(t)

	snap, err := svc.Start(ctx, "exam_1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap.State != session.StateInfoForm || snap.SessionID == "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Exam == nil || snap.Exam.ID != "exam_1" {
		t.Fatalf("exam summary missing: %+v", snap.Exam)
	}
	if manager.Count() != 1 {
		t.Fatalf("manager should hold 1 session, has %d", manager.Count())
	}
}

func TestStartSessionFailuresLeaveNoSession(t *testing.T) {
	ctx := context.Background()
	svc, _, manager := newSessionService(t)

	if _, err := svc.Start(ctx, "exam_missing"); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("unknown exam: err = %v", err)
	}
	if _, err := svc.Start(ctx, "exam_2"); !errors.Is(err, session.ErrExamNotActive) {
		t.Fatalf("inactive exam: err = %v", err)
	}
	if manager.Count() != 0 {
		t.Fatalf("failed starts must not leak sessions, have %d", manager.Count())
	}
}

func TestSessionLifecycleThroughService(t *testing.T) {
	ctx := context.Background()
	svc, st, manager := newSessionService(t)

	snap, err := svc.Start(ctx, "exam_1")
	if err != nil {
		t.Fatal(err)
	}
	id := snap.SessionID

	snap, fields, err := svc.SubmitInfo(ctx, id, model.StudentInfo{Name: "Ada", Email: "ada@example.com"})
	if err != nil || len(fields) > 0 {
		t.Fatalf("SubmitInfo: err=%v fields=%v", err, fields)
	}
	if snap.State != session.StateExam {
		t.Fatalf("state = %s, want EXAM", snap.State)
	}

	if _, err := svc.Answer(id, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Next(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Answer(id, 1); err != nil {
		t.Fatal(err)
	}
	snap, err = svc.Next(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != session.StateResult || snap.Result == nil || snap.Result.Score != 2 {
		t.Fatalf("unexpected final snapshot: %+v", snap)
	}
	if got := len(st.LoadResults(ctx)); got != 1 {
		t.Fatalf("expected 1 persisted result, got %d", got)
	}

	if err := svc.Home(id); err != nil {
		t.Fatalf("Home: %v", err)
	}
	if manager.Count() != 0 {
		t.Fatal("Home must drop the session from the manager")
	}
	if _, err := svc.Snapshot(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("snapshot after Home: err = %v", err)
	}
}

func TestUnknownSessionID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionService(t)

	if _, _, err := svc.SubmitInfo(ctx, "nope", model.StudentInfo{}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("SubmitInfo: err = %v", err)
	}
	if _, err := svc.Answer("nope", 0); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Answer: err = %v", err)
	}
	if _, err := svc.Next(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Next: err = %v", err)
	}
	if err := svc.Home("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Home: err = %v", err)
	}
}
