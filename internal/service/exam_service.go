package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/store"
	"github.com/rs/zerolog"
)

// Admin CRUD errors.
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrInvalidCorrectIdx = errors.New("correct answer index out of option range")
)

// ExamService implements the admin-facing exam and question CRUD. Every
// mutation rewrites the full exam list through the store (last-writer-wins,
// single admin actor assumed). Deleting an exam never touches results: the
// aggregator keeps reporting on orphaned titles.
type ExamService struct {
	store *store.Store
	log   zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(st *store.Store, log zerolog.Logger) *ExamService {
	return &ExamService{
		store: st,
		log:   log.With().Str("component", "exam_service").Logger(),
	}
}

// List returns all exams, including inactive ones.
func (s *ExamService) List(ctx context.Context) []model.Exam {
	return s.store.LoadExams(ctx)
}

// ListActive returns landing-screen summaries of active exams.
func (s *ExamService) ListActive(ctx context.Context) []model.ExamSummary {
	var summaries []model.ExamSummary
	for _, e := range s.store.LoadExams(ctx) {
		if e.Active {
			summaries = append(summaries, e.Summary())
		}
	}
	return summaries
}

// Get returns one exam by id.
func (s *ExamService) Get(ctx context.Context, id string) (model.Exam, error) {
	exam, ok := s.store.ExamByID(ctx, id)
	if !ok {
		return model.Exam{}, ErrExamNotFound
	}
	return exam, nil
}

// Create generates a fresh time-based id and appends the exam.
func (s *ExamService) Create(ctx context.Context, req model.CreateExamRequest) (model.Exam, error) {
	exams := s.store.LoadExams(ctx)

	exam := model.Exam{
		ID:          freshExamID(exams),
		Title:       req.Title,
		Description: req.Description,
		Questions:   []model.Question{},
		Active:      true,
	}
	if req.Active != nil {
		exam.Active = *req.Active
	}

	exams = append(exams, exam)
	if err := s.store.SaveExams(ctx, exams); err != nil {
		return model.Exam{}, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().Str("exam_id", exam.ID).Str("title", exam.Title).Msg("Exam created")
	return exam, nil
}

// Update replaces an exam's metadata by id. The id and question list are
// immutable through this path.
func (s *ExamService) Update(ctx context.Context, id string, req model.UpdateExamRequest) (model.Exam, error) {
	exams := s.store.LoadExams(ctx)

	for i := range exams {
		if exams[i].ID != id {
			continue
		}
		exams[i].Title = req.Title
		exams[i].Description = req.Description
		if req.Active != nil {
			exams[i].Active = *req.Active
		}
		if err := s.store.SaveExams(ctx, exams); err != nil {
			return model.Exam{}, fmt.Errorf("update exam: %w", err)
		}
		return exams[i], nil
	}
	return model.Exam{}, ErrExamNotFound
}

// Delete removes an exam by id. Persisted results for its title remain.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	exams := s.store.LoadExams(ctx)

	kept := make([]model.Exam, 0, len(exams))
	for _, e := range exams {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(exams) {
		return ErrExamNotFound
	}

	if err := s.store.SaveExams(ctx, kept); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}

	s.log.Info().Str("exam_id", id).Msg("Exam deleted")
	return nil
}

// ─── Question CRUD (scoped to one exam) ─────────────────────────────

// AddQuestion appends a question with a fresh numeric id unique within the
// exam. Omitted options default to four empty slots with the first marked
// correct, matching the admin form's starting shape.
func (s *ExamService) AddQuestion(ctx context.Context, examID string, req model.AddQuestionRequest) (model.Question, error) {
	exams := s.store.LoadExams(ctx)

	for i := range exams {
		if exams[i].ID != examID {
			continue
		}

		q := model.Question{
			ID:      freshQuestionID(exams[i].Questions),
			Text:    req.Text,
			Options: []string{"", "", "", ""},
		}
		if len(req.Options) > 0 {
			q.Options = req.Options
		}
		if req.CorrectAnswer != nil {
			q.CorrectAnswer = *req.CorrectAnswer
		}
		if q.CorrectAnswer >= len(q.Options) {
			return model.Question{}, ErrInvalidCorrectIdx
		}

		exams[i].Questions = append(exams[i].Questions, q)
		if err := s.store.SaveExams(ctx, exams); err != nil {
			return model.Question{}, fmt.Errorf("add question: %w", err)
		}
		return q, nil
	}
	return model.Question{}, ErrExamNotFound
}

// UpdateQuestion replaces a question by id within the exam.
func (s *ExamService) UpdateQuestion(ctx context.Context, examID string, questionID int, req model.UpdateQuestionRequest) (model.Question, error) {
	if req.CorrectAnswer >= len(req.Options) {
		return model.Question{}, ErrInvalidCorrectIdx
	}

	exams := s.store.LoadExams(ctx)

	for i := range exams {
		if exams[i].ID != examID {
			continue
		}
		for j := range exams[i].Questions {
			if exams[i].Questions[j].ID != questionID {
				continue
			}
			exams[i].Questions[j] = model.Question{
				ID:            questionID,
				Text:          req.Text,
				Options:       req.Options,
				CorrectAnswer: req.CorrectAnswer,
			}
			if err := s.store.SaveExams(ctx, exams); err != nil {
				return model.Question{}, fmt.Errorf("update question: %w", err)
			}
			return exams[i].Questions[j], nil
		}
		return model.Question{}, ErrQuestionNotFound
	}
	return model.Question{}, ErrExamNotFound
}

// DeleteQuestion removes a question by id within the exam.
func (s *ExamService) DeleteQuestion(ctx context.Context, examID string, questionID int) error {
	exams := s.store.LoadExams(ctx)

	for i := range exams {
		if exams[i].ID != examID {
			continue
		}
		kept := make([]model.Question, 0, len(exams[i].Questions))
		for _, q := range exams[i].Questions {
			if q.ID != questionID {
				kept = append(kept, q)
			}
		}
		if len(kept) == len(exams[i].Questions) {
			return ErrQuestionNotFound
		}
		exams[i].Questions = kept
		if err := s.store.SaveExams(ctx, exams); err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	}
	return ErrExamNotFound
}

// freshExamID returns a time-based id not present in the current list.
// Millisecond resolution collides only when two exams are created in the
// same instant, so a linear probe is enough.
func freshExamID(exams []model.Exam) string {
	base := time.Now().UnixMilli()
	for {
		id := fmt.Sprintf("exam_%d", base)
		if !examIDExists(exams, id) {
			return id
		}
		base++
	}
}

func examIDExists(exams []model.Exam, id string) bool {
	for _, e := range exams {
		if e.ID == id {
			return true
		}
	}
	return false
}

// freshQuestionID returns a numeric id unique within the exam.
func freshQuestionID(questions []model.Question) int {
	id := int(time.Now().UnixMilli())
	for {
		taken := false
		for _, q := range questions {
			if q.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		id++
	}
}
