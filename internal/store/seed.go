package store

import "github.com/quizbd/exam-portal/internal/model"

// DefaultExamID is the id of the built-in seed exam. It is grandfathered in
// the taken-set check: attempts recorded under the legacy email-only list
// still count against it.
const DefaultExamID = "exam_default_01"

// DefaultExams returns the built-in exam set used when the store holds no
// exam data and no legacy data to migrate. Callers receive a fresh copy.
func DefaultExams() []model.Exam {
	return []model.Exam{
		{
			ID:          DefaultExamID,
			Title:       "General Knowledge",
			Description: "A basic assessment of web development and general concepts.",
			Active:      true,
			Questions: []model.Question{
				{
					ID:   1,
					Text: "Which HTTP method is conventionally used to submit data that creates a new record?",
					Options: []string{
						"GET",
						"POST",
						"DELETE",
						"HEAD",
					},
					CorrectAnswer: 1,
				},
				{
					ID:   2,
					Text: "What does 'CSS' stand for?",
					Options: []string{
						"Computer Style Sheets",
						"Creative Style Systems",
						"Cascading Style Sheets",
						"Colorful Style Sheets",
					},
					CorrectAnswer: 2,
				},
				{
					ID:   3,
					Text: "Which HTML tag defines an unordered list?",
					Options: []string{
						"<ul>",
						"<ol>",
						"<li>",
						"<list>",
					},
					CorrectAnswer: 0,
				},
				{
					ID:   4,
					Text: "Which status code indicates that a requested resource was not found?",
					Options: []string{
						"200",
						"301",
						"404",
						"500",
					},
					CorrectAnswer: 2,
				},
				{
					ID:   5,
					Text: "What format is commonly used to exchange structured data between a browser and a server?",
					Options: []string{
						"JSON",
						"JPEG",
						"MP4",
						"ZIP",
					},
					CorrectAnswer: 0,
				},
			},
		},
	}
}
