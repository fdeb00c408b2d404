package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quizbd/exam-portal/internal/config"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/rs/zerolog"
)

// Store persists the portal's three collections (exams, results, taken-set)
// plus the admin record as JSON blobs under stable keys in a KV backend.
//
// Writes are full-list overwrites with last-writer-wins semantics and no
// locking. That discipline is only safe with a single writer; concurrent
// admin actors can lose updates. Known limitation, matches the deployment
// model (one admin at a time).
//
// Loads never fail on malformed persisted data: deserialization errors are
// logged and the affected load degrades to its fallback value.
type Store struct {
	kv  KV
	log zerolog.Logger
}

// New creates a Store on top of the given KV backend.
func New(kv KV, log zerolog.Logger) *Store {
	return &Store{
		kv:  kv,
		log: log.With().Str("component", "store").Logger(),
	}
}

// ─── Exams ──────────────────────────────────────────────────────────

// LoadExams returns the persisted exam list. Fallback chain when the key is
// absent or unparseable: migrate the legacy single question list if present,
// otherwise return the built-in default set. Never returns an empty list
// because of a transient parse failure.
func (s *Store) LoadExams(ctx context.Context) []model.Exam {
	raw, err := s.kv.Get(ctx, config.StorageKey.Exams)
	if err == nil {
		var exams []model.Exam
		if jsonErr := json.Unmarshal([]byte(raw), &exams); jsonErr == nil {
			return s.sanitizeExams(exams)
		} else {
			s.log.Error().Err(jsonErr).Msg("Failed to parse stored exams, falling back")
		}
	} else if !errors.Is(err, ErrKeyNotFound) {
		s.log.Error().Err(err).Msg("Exam load failed, falling back")
	}

	if migrated, ok := s.migrateLegacyQuestions(ctx); ok {
		return migrated
	}

	return DefaultExams()
}

// migrateLegacyQuestions performs the one-time migration from the legacy
// flat question list: wrap it into a synthetic exam, persist the new shape,
// delete the legacy key.
func (s *Store) migrateLegacyQuestions(ctx context.Context) ([]model.Exam, bool) {
	raw, err := s.kv.Get(ctx, config.StorageKey.LegacyQuestions)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Error().Err(err).Msg("Legacy question load failed")
		}
		return nil, false
	}

	var questions []model.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		s.log.Error().Err(err).Msg("Legacy question migration failed")
		return nil, false
	}

	migrated := model.Exam{
		ID:          fmt.Sprintf("exam_migrated_%d", time.Now().UnixMilli()),
		Title:       "Legacy Exam",
		Description: "Migrated from previous version",
		Questions:   questions,
		Active:      true,
	}

	// The migrated exam replaces the default seed exam to avoid showing
	// near-duplicate content side by side.
	exams := []model.Exam{migrated}
	for _, e := range DefaultExams() {
		if e.ID != DefaultExamID {
			exams = append(exams, e)
		}
	}

	if err := s.SaveExams(ctx, exams); err != nil {
		s.log.Error().Err(err).Msg("Persisting migrated exams failed")
		return nil, false
	}
	if err := s.kv.Del(ctx, config.StorageKey.LegacyQuestions); err != nil {
		s.log.Warn().Err(err).Msg("Deleting legacy question key failed")
	}

	s.log.Info().Str("exam_id", migrated.ID).Int("questions", len(migrated.Questions)).
		Msg("Migrated legacy question list")

	return s.sanitizeExams(exams), true
}

// sanitizeExams drops records that violate the data-model invariants rather
// than trusting the persisted shape: exams without an id and questions with
// fewer than two options or an out-of-range correct answer.
func (s *Store) sanitizeExams(exams []model.Exam) []model.Exam {
	clean := make([]model.Exam, 0, len(exams))
	for _, e := range exams {
		if e.ID == "" {
			s.log.Warn().Str("title", e.Title).Msg("Dropping exam without id")
			continue
		}
		kept := make([]model.Question, 0, len(e.Questions))
		for _, q := range e.Questions {
			if !q.Valid() {
				s.log.Warn().Str("exam_id", e.ID).Int("question_id", q.ID).
					Msg("Dropping malformed question")
				continue
			}
			kept = append(kept, q)
		}
		e.Questions = kept
		clean = append(clean, e)
	}
	return clean
}

// SaveExams overwrites the full exam list. Last writer wins, no merge.
func (s *Store) SaveExams(ctx context.Context, exams []model.Exam) error {
	raw, err := json.Marshal(exams)
	if err != nil {
		return fmt.Errorf("marshal exams: %w", err)
	}
	if err := s.kv.Set(ctx, config.StorageKey.Exams, string(raw)); err != nil {
		return fmt.Errorf("save exams: %w", err)
	}
	return nil
}

// ExamByID returns a copy of the exam with the given id.
func (s *Store) ExamByID(ctx context.Context, id string) (model.Exam, bool) {
	for _, e := range s.LoadExams(ctx) {
		if e.ID == id {
			return e, true
		}
	}
	return model.Exam{}, false
}

// ─── Results ────────────────────────────────────────────────────────

// LoadResults returns all persisted results in append order. A parse failure
// degrades to an empty list.
func (s *Store) LoadResults(ctx context.Context) []model.StudentResult {
	raw, err := s.kv.Get(ctx, config.StorageKey.Results)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Error().Err(err).Msg("Result load failed")
		}
		return nil
	}

	var results []model.StudentResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		s.log.Error().Err(err).Msg("Failed to parse stored results")
		return nil
	}
	return results
}

// AppendResult appends one result via read-modify-write (not atomic; single
// writer assumed) and publishes it on the live results feed. Feed publish is
// best-effort and never fails the append.
func (s *Store) AppendResult(ctx context.Context, result model.StudentResult) error {
	results := append(s.LoadResults(ctx), result)

	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := s.kv.Set(ctx, config.StorageKey.Results, string(raw)); err != nil {
		return fmt.Errorf("append result: %w", err)
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := s.kv.Publish(ctx, config.WorkerKey.ResultsFeedChannel, string(payload)); err != nil {
			s.log.Warn().Err(err).Msg("Results feed publish failed")
		}
	}

	return nil
}

// ─── Taken-set ──────────────────────────────────────────────────────

// TakenKey builds the composite taken-set key for a (student, exam) pair.
func TakenKey(email, examID string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "_" + examID
}

// HasTaken reports whether the student already completed the exam. For the
// migrated exam and the default seed exam it also consults the legacy
// email-only list, so attempts recorded before the composite-key scheme
// still count.
func (s *Store) HasTaken(ctx context.Context, email, examID string) bool {
	if strings.HasPrefix(examID, "exam_migrated") || examID == DefaultExamID {
		legacy := s.loadStringList(ctx, config.StorageKey.LegacyTakenEmails)
		normalized := strings.ToLower(strings.TrimSpace(email))
		for _, e := range legacy {
			if e == normalized {
				return true
			}
		}
	}

	key := TakenKey(email, examID)
	for _, k := range s.loadStringList(ctx, config.StorageKey.TakenExams) {
		if k == key {
			return true
		}
	}
	return false
}

// MarkTaken records a completed attempt. Idempotent: re-marking the same
// pair leaves the set unchanged.
func (s *Store) MarkTaken(ctx context.Context, email, examID string) error {
	key := TakenKey(email, examID)
	taken := s.loadStringList(ctx, config.StorageKey.TakenExams)
	for _, k := range taken {
		if k == key {
			return nil
		}
	}
	taken = append(taken, key)

	raw, err := json.Marshal(taken)
	if err != nil {
		return fmt.Errorf("marshal taken set: %w", err)
	}
	if err := s.kv.Set(ctx, config.StorageKey.TakenExams, string(raw)); err != nil {
		return fmt.Errorf("mark taken: %w", err)
	}
	return nil
}

func (s *Store) loadStringList(ctx context.Context, key string) []string {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("List load failed")
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to parse stored list")
		return nil
	}
	return list
}

// ─── Admin record ───────────────────────────────────────────────────

// adminRecord is the persisted shape of the admin account. Unlike
// model.Admin it serializes the password hash.
type adminRecord struct {
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoadAdmin returns the provisioned admin account, or nil if none exists.
func (s *Store) LoadAdmin(ctx context.Context) (*model.Admin, error) {
	raw, err := s.kv.Get(ctx, config.StorageKey.Admin)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load admin: %w", err)
	}

	var rec adminRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Error().Err(err).Msg("Failed to parse stored admin record")
		return nil, nil
	}

	return &model.Admin{
		Username:     rec.Username,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// SaveAdmin overwrites the admin record.
func (s *Store) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	rec := adminRecord{
		Username:     admin.Username,
		Name:         admin.Name,
		PasswordHash: admin.PasswordHash,
		CreatedAt:    admin.CreatedAt,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal admin: %w", err)
	}
	if err := s.kv.Set(ctx, config.StorageKey.Admin, string(raw)); err != nil {
		return fmt.Errorf("save admin: %w", err)
	}
	return nil
}
