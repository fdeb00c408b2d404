// Package session implements the exam-taking state machine: one Session per
// attempt, driven from Landing through scoring by explicit transitions. The
// machine is decoupled from the HTTP layer and talks to persistence and
// remote sync through narrow injected interfaces.
package session

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/rs/zerolog"
)

// State enumerates the student-facing machine states. Admin login and the
// dashboard are not part of the student machine; they live in the HTTP auth
// layer.
type State string

const (
	StateLanding    State = "LANDING"
	StateInfoForm   State = "INFO_FORM"
	StateExam       State = "EXAM"
	StateSubmitting State = "SUBMITTING"
	StateResult     State = "RESULT"
	StateError      State = "ERROR"
)

// Unanswered is the sentinel for an answer slot that has not been filled.
const Unanswered = -1

// Transition errors.
var (
	ErrInvalidTransition = errors.New("session: transition not allowed in current state")
	ErrExamNotActive     = errors.New("session: exam is not active")
	ErrNoQuestions       = errors.New("session: exam has no questions")
	ErrAlreadyTaken      = errors.New("session: exam already taken by this student")
	ErrUnanswered        = errors.New("session: current question not answered")
	ErrInvalidOption     = errors.New("session: option index out of range")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the slice of the persistence layer the machine needs.
type Store interface {
	HasTaken(ctx context.Context, email, examID string) bool
	MarkTaken(ctx context.Context, email, examID string) error
	AppendResult(ctx context.Context, result model.StudentResult) error
}

// Notifier pushes a completed result toward the external system of record.
// Implementations must not block; the outcome is ignored by design.
type Notifier interface {
	Notify(ctx context.Context, payload model.SyncPayload)
}

// Deps are the collaborators injected into every session.
type Deps struct {
	Store    Store
	Notifier Notifier
	Log      zerolog.Logger
	Now      func() time.Time // defaults to time.Now
}

// Session is one student's pass through one exam. All transient attempt
// state (answers, cursor, student identity) lives here and nowhere else.
// Methods are safe for concurrent use; the HTTP layer may deliver requests
// for the same session on different connections.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	deps    Deps
	touched time.Time

	state    State
	student  model.StudentInfo
	exam     *model.Exam
	cursor   int
	answers  []int
	result   *model.StudentResult
	errorMsg string
}

// New creates a session in the Landing state.
func New(deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Session{
		id:    uuid.New(),
		deps:  deps,
		state: StateLanding,
	}
	s.touched = deps.Now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// LastTouched returns the time of the most recent transition, for idle
// reclamation by the manager.
func (s *Session) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) touch() { s.touched = s.deps.Now() }

// SelectExam moves Landing → InfoForm for an active exam. Exams with zero
// questions are rejected here so the progress math downstream never divides
// by zero.
func (s *Session) SelectExam(exam model.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLanding {
		return ErrInvalidTransition
	}
	if !exam.Active {
		return ErrExamNotActive
	}
	if len(exam.Questions) == 0 {
		return ErrNoQuestions
	}

	examCopy := exam
	s.exam = &examCopy
	s.answers = make([]int, len(exam.Questions))
	for i := range s.answers {
		s.answers[i] = Unanswered
	}
	s.cursor = 0
	s.errorMsg = ""
	s.state = StateInfoForm
	s.touch()
	return nil
}

// SubmitInfo validates the student's identity and moves InfoForm → Exam.
// Validation failures are returned as a field → message map and leave the
// state unchanged. A duplicate attempt moves the session to the terminal
// Error state and returns ErrAlreadyTaken; the only way out is ReturnHome.
func (s *Session) SubmitInfo(ctx context.Context, info model.StudentInfo) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInfoForm {
		return nil, ErrInvalidTransition
	}

	fields := make(map[string]string)
	if strings.TrimSpace(info.Name) == "" {
		fields["name"] = "Name is required."
	}
	if strings.TrimSpace(info.Email) == "" {
		fields["email"] = "Email is required."
	} else if !emailPattern.MatchString(info.Email) {
		fields["email"] = "Please enter a valid email address."
	}
	if len(fields) > 0 {
		return fields, nil
	}

	if s.deps.Store.HasTaken(ctx, info.Email, s.exam.ID) {
		s.state = StateError
		s.errorMsg = "Access denied: you have already taken this exam."
		s.touch()
		return nil, ErrAlreadyTaken
	}

	s.student = info
	s.errorMsg = ""
	s.state = StateExam
	s.touch()
	return nil, nil
}

// SelectAnswer overwrites the current question's answer slot. It does not
// advance the cursor; students may change their pick before moving on.
func (s *Session) SelectAnswer(optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExam {
		return ErrInvalidTransition
	}
	if optionIndex < 0 || optionIndex >= len(s.exam.Questions[s.cursor].Options) {
		return ErrInvalidOption
	}

	s.answers[s.cursor] = optionIndex
	s.touch()
	return nil
}

// NextQuestion advances past an answered question. On the last question it
// finishes the exam instead. Returns true once the attempt is complete.
func (s *Session) NextQuestion(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExam {
		return false, ErrInvalidTransition
	}
	if s.answers[s.cursor] == Unanswered {
		return false, ErrUnanswered
	}

	if s.cursor < len(s.exam.Questions)-1 {
		s.cursor++
		s.touch()
		return false, nil
	}

	s.finishLocked(ctx)
	return true, nil
}

// finishLocked runs the Submitting → Result leg: score, persist, notify.
// Once started it always completes locally. Persistence failures are logged
// and do not block the transition to Result; remote sync is fire-and-forget
// by contract.
func (s *Session) finishLocked(ctx context.Context) {
	s.state = StateSubmitting

	score := 0
	for i, answer := range s.answers {
		if answer == s.exam.Questions[i].CorrectAnswer {
			score++
		}
	}

	total := len(s.exam.Questions)
	result := model.StudentResult{
		Score:          score,
		TotalQuestions: total,
		Passed:         model.Pass(score, total),
		StudentName:    s.student.Name,
		StudentEmail:   s.student.Email,
		Timestamp:      s.deps.Now().UTC().Format(time.RFC3339),
		ExamID:         s.exam.ID,
		ExamTitle:      s.exam.Title,
	}
	s.result = &result

	if err := s.deps.Store.MarkTaken(ctx, s.student.Email, s.exam.ID); err != nil {
		s.deps.Log.Error().Err(err).Str("exam_id", s.exam.ID).Msg("Mark taken failed")
	}
	if err := s.deps.Store.AppendResult(ctx, result); err != nil {
		s.deps.Log.Error().Err(err).Str("exam_id", s.exam.ID).Msg("Result append failed")
	}

	// Outcome ignored by design: a dead webhook must never alter the
	// student-visible flow.
	s.deps.Notifier.Notify(ctx, model.SyncPayload{
		Name:      s.student.Name,
		Email:     s.student.Email,
		Score:     score,
		ExamTitle: s.exam.Title,
		Timestamp: result.Timestamp,
	})

	s.state = StateResult
	s.touch()
}

// ReturnHome clears all transient attempt state and returns to Landing.
// Valid from the Result and Error states only.
func (s *Session) ReturnHome() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateResult && s.state != StateError {
		return ErrInvalidTransition
	}

	s.student = model.StudentInfo{}
	s.exam = nil
	s.answers = nil
	s.cursor = 0
	s.result = nil
	s.errorMsg = ""
	s.state = StateLanding
	s.touch()
	return nil
}
