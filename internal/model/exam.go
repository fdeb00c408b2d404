package model

// Exam represents a named, ordered collection of questions plus an active
// flag. The id is a string of the form "exam_<unix-millis>" and is immutable
// after creation; the "exam_migrated_" and "exam_default_" prefixes carry
// legacy meaning in the taken-set check and must be preserved.
type Exam struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Active      bool       `json:"active"`
}

// QuestionByID returns the question with the given id, or nil.
func (e *Exam) QuestionByID(id int) *Question {
	for i := range e.Questions {
		if e.Questions[i].ID == id {
			return &e.Questions[i]
		}
	}
	return nil
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Active      *bool  `json:"active" binding:"omitempty"`
}

// UpdateExamRequest is the payload for updating exam metadata. The id and
// question list are untouched by this path; questions have their own CRUD.
type UpdateExamRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Active      *bool  `json:"active" binding:"omitempty"`
}

// ExamSummary is the exam as listed on the student landing screen:
// no question bodies, no correct answers.
type ExamSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
}

// Summary converts an exam to its landing-screen listing form.
func (e *Exam) Summary() ExamSummary {
	return ExamSummary{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		QuestionCount: len(e.Questions),
	}
}
