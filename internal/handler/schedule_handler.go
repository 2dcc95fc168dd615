package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bureauplan/bureauplan-api/internal/dto"
	"github.com/bureauplan/bureauplan-api/internal/models"
	"github.com/bureauplan/bureauplan-api/internal/service"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
	"github.com/bureauplan/bureauplan-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest, actorID string) (*dto.GenerateScheduleResponse, error)
	SaveFromPreview(ctx context.Context, previewID, actorID string) (*dto.SaveScheduleResponse, error)
	Failures() []models.FailureRecord
}

type scheduleExporter interface {
	RenderSchedule(schedule *models.GeneratedSchedule, format, label string) (*service.ExportResult, error)
}

// ScheduleHandler exposes the generation pipeline over HTTP.
type ScheduleHandler struct {
	generator scheduleGenerator
	previews  service.PreviewStore
	exporter  scheduleExporter
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(generator *service.GenerationService, previews service.PreviewStore, exporter *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{generator: generator, previews: previews, exporter: exporter}
}

// Generate godoc
// @Summary Generate a shift schedule proposal
// @Description Builds a schedule with the configured model. Without persist the result is stored as a preview and must be saved explicitly.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation request"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req, actorIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Persist a previewed schedule
// @Tags Schedules
// @Produce json
// @Param previewId path string true "Preview ID"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/{previewId}/save [post]
func (h *ScheduleHandler) Save(c *gin.Context) {
	saved, err := h.generator.SaveFromPreview(c.Request.Context(), c.Param("previewId"), actorIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// Failures godoc
// @Summary Recent rejected model responses
// @Description Diagnostic window over the last few model replies the parser refused.
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/failures [get]
func (h *ScheduleHandler) Failures(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.generator.Failures(), nil)
}

// Export godoc
// @Summary Download a previewed schedule as CSV or PDF
// @Tags Schedules
// @Produce octet-stream
// @Param previewId path string true "Preview ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /schedules/{previewId}/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	previewID := c.Param("previewId")
	preview, err := h.previews.Get(c.Request.Context(), previewID)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	label := fmt.Sprintf("schedule-%s-%s", preview.Request.StartDate, preview.Request.EndDate)
	result, err := h.exporter.RenderSchedule(&preview.Schedule, format, label)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
