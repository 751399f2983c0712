package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/services"
)

type QueryHandler struct {
	qa services.QAService
}

func NewQueryHandler(qa services.QAService) *QueryHandler {
	return &QueryHandler{qa: qa}
}

type createQueryRequest struct {
	Question    string     `json:"question" binding:"required"`
	Mode        string     `json:"mode"`
	RecordingID *uuid.UUID `json:"recording_id"`
	Style       string     `json:"style"`
}

// Create accepts a question and returns 202 immediately; the pipeline runs
// in the background and clients poll Get for answers.
func (h *QueryHandler) Create(c *gin.Context) {
	var req createQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	q, err := h.qa.Ask(c.Request.Context(), services.AskInput{
		Question:    req.Question,
		Mode:        req.Mode,
		RecordingID: req.RecordingID,
		Style:       req.Style,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQuestion),
			errors.Is(err, services.ErrInvalidMode),
			errors.Is(err, services.ErrMissingRecording):
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
		case errors.Is(err, services.ErrRecordingNotFound):
			RespondError(c, http.StatusNotFound, "recording_not_found", err)
		default:
			RespondError(c, http.StatusInternalServerError, "query_create_failed", err)
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"query_id": q.ID,
		"status":   q.Status,
	})
}

func (h *QueryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query_id", err)
		return
	}

	view, err := h.qa.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "query_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "query_fetch_failed", err)
		return
	}
	RespondOK(c, view)
}

func (h *QueryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	queries, err := h.qa.ListRecent(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "query_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"queries": queries})
}
