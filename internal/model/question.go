package model

// Question represents a single multiple-choice question. IDs are numeric and
// unique within their exam only, not globally.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"` // Index into Options
}

// Valid reports whether the question satisfies the data-model invariants:
// at least two options and a correct-answer index inside the option range.
func (q Question) Valid() bool {
	return len(q.Options) >= 2 && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

// AddQuestionRequest is the payload for adding a question to an exam.
// Options and CorrectAnswer are optional: a freshly created question defaults
// to four empty options with the first marked correct.
type AddQuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"omitempty,min=2,max=10"`
	CorrectAnswer *int     `json:"correctAnswer" binding:"omitempty,min=0"`
}

// UpdateQuestionRequest is the payload for replacing a question by id.
type UpdateQuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,max=10"`
	CorrectAnswer int      `json:"correctAnswer" binding:"min=0"`
}
