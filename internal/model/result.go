package model

// StudentInfo identifies the student for the duration of a single exam
// session. It is never persisted on its own.
type StudentInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StudentResult is one completed attempt. Results are append-only: the core
// never mutates or deletes them, even when the exam itself is removed.
type StudentResult struct {
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Passed         bool   `json:"passed"`
	StudentName    string `json:"studentName"`
	StudentEmail   string `json:"studentEmail"`
	Timestamp      string `json:"timestamp"` // RFC 3339
	ExamID         string `json:"examId"`
	ExamTitle      string `json:"examTitle"`
}

// Pass reports whether a score passes for the given question count.
// Exactly half passes. The comparison score >= total/2 is kept in integers
// as 2*score >= total so odd totals round the same way as the float form.
func Pass(score, totalQuestions int) bool {
	return 2*score >= totalQuestions
}

// SyncPayload is the JSON body sent to the spreadsheet webhook for one
// completed attempt. The receiver's response is not part of any contract.
type SyncPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Score     int    `json:"score"`
	ExamTitle string `json:"examTitle"`
	Timestamp string `json:"timestamp"`
}
