package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

func TestMemoryPreviewStoreRoundTrip(t *testing.T) {
	store := NewMemoryPreviewStore(time.Minute)
	preview := SchedulePreview{
		PreviewID: "p1",
		Request:   PreviewRequest{StartDate: "2026-09-07", EndDate: "2026-09-13", Bureau: "both"},
		Schedule: models.GeneratedSchedule{Shifts: []models.ShiftCandidate{
			candidate("2026-09-07", "08:00", "16:00", "Oslo", "Kari Nordmann"),
		}},
		CreatedBy: "u1",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Put(context.Background(), preview))

	loaded, err := store.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, preview.Request, loaded.Request)
	assert.Len(t, loaded.Schedule.Shifts, 1)

	require.NoError(t, store.Delete(context.Background(), "p1"))
	_, err = store.Get(context.Background(), "p1")
	assert.Equal(t, appErrors.ErrPreviewExpired.Code, appErrors.FromError(err).Code)
}

func TestMemoryPreviewStoreExpiry(t *testing.T) {
	store := NewMemoryPreviewStore(time.Minute)
	require.NoError(t, store.Put(context.Background(), SchedulePreview{PreviewID: "p1"}))

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err := store.Get(context.Background(), "p1")
	assert.Equal(t, appErrors.ErrPreviewExpired.Code, appErrors.FromError(err).Code)
}
