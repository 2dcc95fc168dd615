package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureauplan/bureauplan-api/internal/dto"
	internalmiddleware "github.com/bureauplan/bureauplan-api/internal/middleware"
	"github.com/bureauplan/bureauplan-api/internal/models"
	"github.com/bureauplan/bureauplan-api/internal/service"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

type generatorMock struct {
	captured    dto.GenerateScheduleRequest
	actor       string
	generateErr error
	saveErr     error
}

func (m *generatorMock) Generate(_ context.Context, req dto.GenerateScheduleRequest, actorID string) (*dto.GenerateScheduleResponse, error) {
	m.captured = req
	m.actor = actorID
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateScheduleResponse{PreviewID: "preview-1", Attempts: 1}, nil
}

func (m *generatorMock) SaveFromPreview(_ context.Context, previewID, actorID string) (*dto.SaveScheduleResponse, error) {
	m.actor = actorID
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &dto.SaveScheduleResponse{ShiftIDs: []string{"s1"}, AssignmentIDs: []string{"a1"}}, nil
}

func (m *generatorMock) Failures() []models.FailureRecord {
	return []models.FailureRecord{{Reason: "No JSON found", Timestamp: time.Now()}}
}

func generatePayload() []byte {
	raw, _ := json.Marshal(dto.GenerateScheduleRequest{
		StartDate:   "2026-09-07",
		EndDate:     "2026-09-13",
		Granularity: "week",
		Bureau:      "both",
	})
	return raw
}

func postContext(t *testing.T, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestScheduleHandlerGenerate(t *testing.T) {
	mockSvc := &generatorMock{}
	h := &ScheduleHandler{generator: mockSvc}
	c, w := postContext(t, "/schedules/generate", generatePayload())
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "user-9"})

	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "both", mockSvc.captured.Bureau)
	assert.Equal(t, "user-9", mockSvc.actor)
	assert.Contains(t, w.Body.String(), "preview-1")
}

func TestScheduleHandlerGenerateBadPayload(t *testing.T) {
	h := &ScheduleHandler{generator: &generatorMock{}}
	c, w := postContext(t, "/schedules/generate", []byte(`{"start_date":`))

	h.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerGenerateUpstreamFailure(t *testing.T) {
	mockSvc := &generatorMock{generateErr: appErrors.Clone(appErrors.ErrGenerationFailed, "max retries exceeded")}
	h := &ScheduleHandler{generator: mockSvc}
	c, w := postContext(t, "/schedules/generate", generatePayload())

	h.Generate(c)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "max retries exceeded")
}

func TestScheduleHandlerSave(t *testing.T) {
	mockSvc := &generatorMock{}
	h := &ScheduleHandler{generator: mockSvc}
	c, w := postContext(t, "/schedules/preview-1/save", nil)
	c.Params = gin.Params{{Key: "previewId", Value: "preview-1"}}
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "user-2"})

	h.Save(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-2", mockSvc.actor)
	assert.Contains(t, w.Body.String(), "s1")
}

func TestScheduleHandlerSaveExpiredPreview(t *testing.T) {
	mockSvc := &generatorMock{saveErr: appErrors.ErrPreviewExpired}
	h := &ScheduleHandler{generator: mockSvc}
	c, w := postContext(t, "/schedules/gone/save", nil)
	c.Params = gin.Params{{Key: "previewId", Value: "gone"}}

	h.Save(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerFailures(t *testing.T) {
	h := &ScheduleHandler{generator: &generatorMock{}}
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedules/failures", nil)

	h.Failures(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No JSON found")
}

func TestScheduleHandlerExportCSV(t *testing.T) {
	previews := service.NewMemoryPreviewStore(time.Minute)
	require.NoError(t, previews.Put(context.Background(), service.SchedulePreview{
		PreviewID: "preview-1",
		Request:   service.PreviewRequest{StartDate: "2026-09-07", EndDate: "2026-09-13"},
		Schedule: models.GeneratedSchedule{Shifts: []models.ShiftCandidate{{
			Date: "2026-09-07", StartTime: "08:00", EndTime: "16:00",
			Bureau: "Oslo", EmployeeName: "Kari Nordmann", Category: "Morning",
		}}},
	}))
	h := &ScheduleHandler{generator: &generatorMock{}, previews: previews, exporter: service.NewExportService()}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedules/preview-1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "previewId", Value: "preview-1"}}

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Kari Nordmann")
}
