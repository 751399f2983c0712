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

type RecordingHandler struct {
	catalog services.CatalogService
}

func NewRecordingHandler(catalog services.CatalogService) *RecordingHandler {
	return &RecordingHandler{catalog: catalog}
}

func (h *RecordingHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	recordings, err := h.catalog.ListRecordings(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recording_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"recordings": recordings})
}

func (h *RecordingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_recording_id", err)
		return
	}

	view, err := h.catalog.GetRecording(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "recording_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "recording_fetch_failed", err)
		return
	}
	RespondOK(c, view)
}
