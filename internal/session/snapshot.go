package session

import "github.com/quizbd/exam-portal/internal/model"

// QuestionView is the current question as exposed to the student: the
// correct answer never leaves the server.
type QuestionView struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Snapshot is a point-in-time view of a session for the HTTP layer.
type Snapshot struct {
	SessionID      string               `json:"session_id"`
	State          State                `json:"state"`
	Exam           *model.ExamSummary   `json:"exam,omitempty"`
	QuestionIndex  int                  `json:"question_index"`
	TotalQuestions int                  `json:"total_questions"`
	Question       *QuestionView        `json:"question,omitempty"`
	Answer         int                  `json:"answer"` // -1 when unanswered
	Result         *model.StudentResult `json:"result,omitempty"`
	ErrorMsg       string               `json:"error_msg,omitempty"`
}

// Snapshot returns the session's current externally visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id.String(),
		State:     s.state,
		Answer:    Unanswered,
		ErrorMsg:  s.errorMsg,
	}

	if s.exam != nil {
		summary := s.exam.Summary()
		snap.Exam = &summary
		snap.TotalQuestions = len(s.exam.Questions)
		snap.QuestionIndex = s.cursor

		if s.state == StateExam {
			q := s.exam.Questions[s.cursor]
			snap.Question = &QuestionView{
				ID:      q.ID,
				Text:    q.Text,
				Options: append([]string(nil), q.Options...),
			}
			snap.Answer = s.answers[s.cursor]
		}
	}

	if s.result != nil {
		resultCopy := *s.result
		snap.Result = &resultCopy
	}

	return snap
}
