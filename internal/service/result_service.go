package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/store"
	"github.com/rs/zerolog"
)

// unknownExamTitle buckets results whose exam title was never recorded.
const unknownExamTitle = "Unknown Exam"

// StudentRow is one student's row in the pivot table: their results keyed by
// exam title. A missing title means no attempt.
type StudentRow struct {
	Name    string                         `json:"name"`
	Email   string                         `json:"email"`
	Results map[string]model.StudentResult `json:"results"`
}

// PivotTable is the admin-facing aggregation of all results: one row per
// distinct student email, one column per exam title.
type PivotTable struct {
	Students   []StudentRow `json:"students"`
	ExamTitles []string     `json:"exam_titles"`
}

// Aggregate builds the pivot table from raw results and exam definitions.
// Pure function; input order of results is their chronological append order.
//
// Titles are the union of defined exams and recorded results, so deleting an
// exam never removes its column. Students are grouped by lowercased-trimmed
// email; within a group the last result per title wins and the most recently
// processed name wins. Rows sort by name (case-insensitive), columns
// lexicographically.
func Aggregate(results []model.StudentResult, exams []model.Exam) PivotTable {
	titles := make(map[string]struct{})
	for _, e := range exams {
		titles[e.Title] = struct{}{}
	}

	rows := make(map[string]*StudentRow)
	var order []string

	for _, r := range results {
		title := r.ExamTitle
		if title == "" {
			title = unknownExamTitle
		}
		titles[title] = struct{}{}

		emailKey := strings.ToLower(strings.TrimSpace(r.StudentEmail))
		row, ok := rows[emailKey]
		if !ok {
			row = &StudentRow{
				Email:   r.StudentEmail,
				Results: make(map[string]model.StudentResult),
			}
			rows[emailKey] = row
			order = append(order, emailKey)
		}
		row.Name = r.StudentName
		row.Results[title] = r
	}

	students := make([]StudentRow, 0, len(order))
	for _, key := range order {
		students = append(students, *rows[key])
	}
	sort.SliceStable(students, func(i, j int) bool {
		return strings.ToLower(students[i].Name) < strings.ToLower(students[j].Name)
	})

	titleList := make([]string, 0, len(titles))
	for t := range titles {
		titleList = append(titleList, t)
	}
	sort.Strings(titleList)

	return PivotTable{Students: students, ExamTitles: titleList}
}

// BuildCSV renders the pivot table as CSV: header Name,Email,<titles...>,
// cells "score/total" or "-" for no attempt. Plain comma separation with no
// escaping; titles or names containing commas will shift columns. Known
// limitation carried over from the export this replaces.
func BuildCSV(table PivotTable) string {
	var b strings.Builder

	b.WriteString("Name,Email")
	for _, title := range table.ExamTitles {
		b.WriteString(",")
		b.WriteString(title)
	}
	b.WriteString("\n")

	for _, student := range table.Students {
		b.WriteString(student.Name)
		b.WriteString(",")
		b.WriteString(student.Email)
		for _, title := range table.ExamTitles {
			b.WriteString(",")
			if r, ok := student.Results[title]; ok {
				b.WriteString(fmt.Sprintf("%d/%d", r.Score, r.TotalQuestions))
			} else {
				b.WriteString("-")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ResultService exposes the aggregation over the store for the admin API.
type ResultService struct {
	store *store.Store
	log   zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(st *store.Store, log zerolog.Logger) *ResultService {
	return &ResultService{
		store: st,
		log:   log.With().Str("component", "result_service").Logger(),
	}
}

// Pivot aggregates all persisted results against the current exam set.
func (s *ResultService) Pivot(ctx context.Context) PivotTable {
	return Aggregate(s.store.LoadResults(ctx), s.store.LoadExams(ctx))
}

// ExportCSV renders the pivot table for download.
func (s *ResultService) ExportCSV(ctx context.Context) string {
	return BuildCSV(s.Pivot(ctx))
}

// Raw returns the append-ordered result log.
func (s *ResultService) Raw(ctx context.Context) []model.StudentResult {
	return s.store.LoadResults(ctx)
}
