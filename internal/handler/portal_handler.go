package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/response"
	"github.com/quizbd/exam-portal/internal/service"
	"github.com/quizbd/exam-portal/internal/session"
	"github.com/quizbd/exam-portal/internal/validator"
)

// PortalHandler exposes the student-facing exam flow: listing exams and
// driving a session from selection through the result screen.
type PortalHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(examService *service.ExamService, sessionService *service.SessionService) *PortalHandler {
	return &PortalHandler{
		examService:    examService,
		sessionService: sessionService,
	}
}

// startSessionRequest selects the exam an attempt is for.
type startSessionRequest struct {
	ExamID string `json:"exam_id" binding:"required"`
}

// submitInfoRequest carries the student's identity.
type submitInfoRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// answerRequest carries the picked option for the current question.
type answerRequest struct {
	OptionIndex *int `json:"option_index" binding:"required"`
}

// ListExams godoc
// GET /api/v1/portal/exams
// Lists active exams as landing-screen summaries (no question bodies).
func (h *PortalHandler) ListExams(c *gin.Context) {
	summaries := h.examService.ListActive(c.Request.Context())
	if summaries == nil {
		summaries = []model.ExamSummary{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": summaries})
}

// StartSession godoc
// POST /api/v1/portal/sessions
// Creates a session for the chosen exam and moves it to the info form.
func (h *PortalHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.sessionService.Start(c.Request.Context(), req.ExamID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, session.ErrExamNotActive):
			response.Fail(c, http.StatusForbidden, response.ErrExamNotActive)
		case errors.Is(err, session.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": snap})
}

// GetSession godoc
// GET /api/v1/portal/sessions/:session_id
func (h *PortalHandler) GetSession(c *gin.Context) {
	snap, err := h.sessionService.Snapshot(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionExpired)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// SubmitInfo godoc
// POST /api/v1/portal/sessions/:session_id/info
// Field-level validation errors stay inline (400); a duplicate attempt flips
// the session into its terminal Error state (403).
func (h *PortalHandler) SubmitInfo(c *gin.Context) {
	var req submitInfoRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, fields, err := h.sessionService.SubmitInfo(c.Request.Context(), c.Param("session_id"), model.StudentInfo{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrSessionExpired)
		case errors.Is(err, session.ErrAlreadyTaken):
			// The session is now in its terminal Error state; GET /sessions/:id
			// returns the access-denied screen until the student goes home.
			response.Fail(c, http.StatusForbidden, response.ErrAlreadyTaken)
		case errors.Is(err, session.ErrInvalidTransition):
			response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	if len(fields) > 0 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// SelectAnswer godoc
// POST /api/v1/portal/sessions/:session_id/answer
func (h *PortalHandler) SelectAnswer(c *gin.Context) {
	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.sessionService.Answer(c.Param("session_id"), *req.OptionIndex)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrSessionExpired)
		case errors.Is(err, session.ErrInvalidOption):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
		case errors.Is(err, session.ErrInvalidTransition):
			response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// NextQuestion godoc
// POST /api/v1/portal/sessions/:session_id/next
// Advances past an answered question; on the last question this finishes
// the exam, persists the result, and enqueues the remote sync.
func (h *PortalHandler) NextQuestion(c *gin.Context) {
	snap, err := h.sessionService.Next(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrSessionExpired)
		case errors.Is(err, session.ErrUnanswered):
			response.Fail(c, http.StatusBadRequest, response.ErrUnanswered)
		case errors.Is(err, session.ErrInvalidTransition):
			response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// ReturnHome godoc
// POST /api/v1/portal/sessions/:session_id/home
// Clears all transient attempt state and releases the session.
func (h *PortalHandler) ReturnHome(c *gin.Context) {
	if err := h.sessionService.Home(c.Param("session_id")); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrSessionExpired)
		case errors.Is(err, session.ErrInvalidTransition):
			response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "session cleared"})
}
