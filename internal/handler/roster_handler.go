package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bureauplan/bureauplan-api/internal/models"
	"github.com/bureauplan/bureauplan-api/internal/repository"
	"github.com/bureauplan/bureauplan-api/pkg/response"
)

type rosterLister interface {
	ListProfiles(ctx context.Context, bureau string) ([]models.EmployeeProfile, error)
}

type bureauLister interface {
	List(ctx context.Context) ([]models.Bureau, error)
}

// RosterHandler exposes the employees and bureaus read endpoints.
type RosterHandler struct {
	employees rosterLister
	bureaus   bureauLister
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(employees *repository.EmployeeRepository, bureaus *repository.BureauRepository) *RosterHandler {
	return &RosterHandler{employees: employees, bureaus: bureaus}
}

// Employees godoc
// @Summary List employee planning profiles
// @Description Active employees with preferences, confirmation state and a trailing 30 day workload summary.
// @Tags Roster
// @Produce json
// @Param bureau query string false "Filter by bureau name"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /employees [get]
func (h *RosterHandler) Employees(c *gin.Context) {
	profiles, err := h.employees.ListProfiles(c.Request.Context(), c.Query("bureau"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if profiles == nil {
		profiles = []models.EmployeeProfile{}
	}
	response.JSON(c, http.StatusOK, profiles, nil)
}

// Bureaus godoc
// @Summary List active bureaus
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /bureaus [get]
func (h *RosterHandler) Bureaus(c *gin.Context) {
	bureaus, err := h.bureaus.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if bureaus == nil {
		bureaus = []models.Bureau{}
	}
	response.JSON(c, http.StatusOK, bureaus, nil)
}
