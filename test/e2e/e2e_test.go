//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/quizbd/exam-portal/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultBaseURL  = "http://localhost:8080/api/v1"
	defaultRedisURL = "redis://localhost:6379/0"
	adminUser       = "admin"
	adminPass       = "admin123"
	studentName     = "E2E Student"
	studentEmail    = "e2e_student@example.com"
)

var (
	baseURL    string
	redisURL   string
	adminToken string
	examID     string
	sessionID  string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	redisURL = os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = defaultRedisURL
	}

	if err := cleanStorage(); err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// cleanStorage wipes the portal's keys so each run starts from the built-in
// default exam set and an empty result log.
func cleanStorage() error {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	ctx := context.Background()
	keys := []string{
		config.StorageKey.Exams,
		config.StorageKey.Results,
		config.StorageKey.TakenExams,
		config.StorageKey.Admin,
		config.StorageKey.LegacyQuestions,
		config.StorageKey.LegacyTakenEmails,
		config.WorkerKey.SyncResultsQueue,
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cleanup keys: %w", err)
	}
	return nil
}

func TestE2EFlow(t *testing.T) {
	// Step 1: Login as Admin (bootstrap credentials, no provisioned record)
	t.Run("AdminLogin", func(t *testing.T) {
		reqBody := map[string]string{
			"username": adminUser,
			"password": adminPass,
		}
		resp, err := post("/auth/admin/login", reqBody, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Token string `json:"token"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		adminToken = body.Data.Token
		if adminToken == "" {
			t.Fatal("token missing")
		}
		t.Logf("Admin Token received")
	})

	// Step 1b: Wrong password is rejected inline
	t.Run("AdminLoginWrongPassword", func(t *testing.T) {
		reqBody := map[string]string{
			"username": adminUser,
			"password": "definitely-wrong",
		}
		resp, err := post("/auth/admin/login", reqBody, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d. Body: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 2: Create Exam (Admin)
	t.Run("CreateExam", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"title":       "E2E Test Exam",
			"description": "Created by the e2e run",
		}
		resp, err := post("/admin/exams", reqBody, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Exam struct {
					ID string `json:"id"`
				} `json:"exam"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		examID = body.Data.Exam.ID
		if examID == "" {
			t.Fatal("exam ID missing")
		}
		t.Logf("Exam Created: %s", examID)
	})

	// Step 3: Add Questions (Admin)
	t.Run("AddQuestions", func(t *testing.T) {
		questions := []map[string]interface{}{
			{"text": "What is 2+2?", "options": []string{"3", "4", "5", "6"}, "correctAnswer": 1},
			{"text": "What is 3*3?", "options": []string{"6", "9"}, "correctAnswer": 1},
		}
		for _, q := range questions {
			resp, err := post(fmt.Sprintf("/admin/exams/%s/questions", examID), q, adminToken)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
			}
			resp.Body.Close()
		}
		t.Logf("Questions Added")
	})

	// Step 4: Exam appears on the landing list
	t.Run("ListPortalExams", func(t *testing.T) {
		resp, err := get("/portal/exams", "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Exams []struct {
					ID            string `json:"id"`
					QuestionCount int    `json:"question_count"`
				} `json:"exams"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)

		found := false
		for _, e := range body.Data.Exams {
			if e.ID == examID {
				found = true
				if e.QuestionCount != 2 {
					t.Errorf("question count = %d, want 2", e.QuestionCount)
				}
			}
		}
		if !found {
			t.Fatal("created exam not listed on the portal")
		}
	})

	// Step 5: Start a session and submit the info form
	t.Run("StartSession", func(t *testing.T) {
		resp, err := post("/portal/sessions", map[string]string{"exam_id": examID}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Session struct {
					SessionID string `json:"session_id"`
					State     string `json:"state"`
				} `json:"session"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		sessionID = body.Data.Session.SessionID
		if sessionID == "" || body.Data.Session.State != "INFO_FORM" {
			t.Fatalf("unexpected session: %+v", body.Data.Session)
		}
		t.Logf("Session Started: %s", sessionID)
	})

	t.Run("SubmitInfo", func(t *testing.T) {
		reqBody := map[string]string{"name": studentName, "email": studentEmail}
		resp, err := post(fmt.Sprintf("/portal/sessions/%s/info", sessionID), reqBody, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 6: Answer both questions correctly and finish
	t.Run("AnswerAndFinish", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp, err := post(fmt.Sprintf("/portal/sessions/%s/answer", sessionID), map[string]int{"option_index": 1}, "")
			if err != nil {
				t.Fatalf("answer request failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("answer status %d: %s", resp.StatusCode, readBody(resp))
			}
			resp.Body.Close()

			resp, err = post(fmt.Sprintf("/portal/sessions/%s/next", sessionID), nil, "")
			if err != nil {
				t.Fatalf("next request failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("next status %d: %s", resp.StatusCode, readBody(resp))
			}
			if i == 1 {
				var body struct {
					Data struct {
						Session struct {
							State  string `json:"state"`
							Result *struct {
								Score  int  `json:"score"`
								Passed bool `json:"passed"`
							} `json:"result"`
						} `json:"session"`
					} `json:"data"`
				}
				decodeJSON(t, resp, &body)
				s := body.Data.Session
				if s.State != "RESULT" || s.Result == nil || s.Result.Score != 2 || !s.Result.Passed {
					t.Fatalf("unexpected final state: %+v", s)
				}
				t.Logf("Exam finished: %d correct", s.Result.Score)
			}
			resp.Body.Close()
		}
	})

	// Step 7: A second attempt by the same student is blocked
	t.Run("SecondAttemptBlocked", func(t *testing.T) {
		resp, err := post("/portal/sessions", map[string]string{"exam_id": examID}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var body struct {
			Data struct {
				Session struct {
					SessionID string `json:"session_id"`
				} `json:"session"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		resp.Body.Close()

		reqBody := map[string]string{"name": studentName, "email": strings.ToUpper(studentEmail)}
		resp, err = post(fmt.Sprintf("/portal/sessions/%s/info", body.Data.Session.SessionID), reqBody, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("Expected 403 for repeat attempt, got %d. Body: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 8: Admin sees the result in the pivot
	t.Run("GetResultsPivot", func(t *testing.T) {
		resp, err := get("/admin/results", adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Students []struct {
					Name  string `json:"name"`
					Email string `json:"email"`
				} `json:"students"`
				ExamTitles []string `json:"exam_titles"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)

		found := false
		for _, s := range body.Data.Students {
			if s.Email == studentEmail {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Student %s not found in pivot", studentEmail)
		}
	})

	// Step 9: CSV export carries the student's row
	t.Run("ExportCSV", func(t *testing.T) {
		resp, err := get("/admin/results/export", adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		csv := readBody(resp)
		if !strings.HasPrefix(csv, "Name,Email") {
			t.Errorf("unexpected CSV header: %q", csv)
		}
		if !strings.Contains(csv, studentEmail) || !strings.Contains(csv, "2/2") {
			t.Errorf("student row missing from export:\n%s", csv)
		}
	})

	// Step 10: Admin routes reject requests without a token
	t.Run("AdminRoutesRequireToken", func(t *testing.T) {
		resp, err := get("/admin/results", "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", resp.StatusCode)
		}
	})
}

// Helpers

func post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest("POST", baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
