package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/response"
	"github.com/quizbd/exam-portal/internal/service"
	"github.com/quizbd/exam-portal/internal/validator"
)

// QuestionHandler handles question management within one exam.
type QuestionHandler struct {
	examService *service.ExamService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(examService *service.ExamService) *QuestionHandler {
	return &QuestionHandler{examService: examService}
}

// AddQuestion godoc
// POST /api/v1/admin/exams/:exam_id/questions
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.examService.AddQuestion(c.Request.Context(), c.Param("exam_id"), req)
	if err != nil {
		h.failQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/exams/:exam_id/questions/:question_id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.examService.UpdateQuestion(c.Request.Context(), c.Param("exam_id"), questionID, req)
	if err != nil {
		h.failQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/exams/:exam_id/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.DeleteQuestion(c.Request.Context(), c.Param("exam_id"), questionID); err != nil {
		h.failQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}

func (h *QuestionHandler) failQuestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidCorrectIdx):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"correctAnswer": "must index an existing option",
		})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
