package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bureauplan/bureauplan-api/internal/dto"
	"github.com/bureauplan/bureauplan-api/internal/models"
	"github.com/bureauplan/bureauplan-api/internal/repository"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
	"github.com/bureauplan/bureauplan-api/pkg/response"
)

type shiftLister interface {
	List(ctx context.Context, filter models.ShiftFilter) ([]models.ShiftDetail, int, error)
}

// ShiftHandler exposes the durable shift listing.
type ShiftHandler struct {
	shifts shiftLister
}

// NewShiftHandler constructs the handler.
func NewShiftHandler(shifts *repository.ShiftRepository) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// List godoc
// @Summary List saved shifts
// @Tags Shifts
// @Produce json
// @Param bureau query string false "Filter by bureau name"
// @Param start query string false "Window start, YYYY-MM-DD"
// @Param end query string false "Window end, YYYY-MM-DD"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	var query dto.ShiftListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift query"))
		return
	}

	filter := models.ShiftFilter{
		Bureau:   query.Bureau,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.StartDate != "" {
		start, err := time.Parse("2006-01-02", query.StartDate)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start must be YYYY-MM-DD"))
			return
		}
		filter.StartDate = start
	}
	if query.EndDate != "" {
		end, err := time.Parse("2006-01-02", query.EndDate)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end must be YYYY-MM-DD"))
			return
		}
		filter.EndDate = end
	}

	shifts, total, err := h.shifts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if shifts == nil {
		shifts = []models.ShiftDetail{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	response.JSON(c, http.StatusOK, shifts, &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
	})
}
