package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

const previewKeyPrefix = "schedule:preview:"

// SchedulePreview holds a generated schedule awaiting an explicit save.
type SchedulePreview struct {
	PreviewID  string                   `json:"preview_id"`
	Request    PreviewRequest           `json:"request"`
	Schedule   models.GeneratedSchedule `json:"schedule"`
	Violations []string                 `json:"violations"`
	CreatedBy  string                   `json:"created_by"`
	CreatedAt  time.Time                `json:"created_at"`
}

// PreviewRequest is the subset of the generation request replayed at save time.
type PreviewRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Bureau    string `json:"bureau"`
}

// PreviewStore retains previews until they are saved or expire.
type PreviewStore interface {
	Put(ctx context.Context, preview SchedulePreview) error
	Get(ctx context.Context, previewID string) (*SchedulePreview, error)
	Delete(ctx context.Context, previewID string) error
}

// RedisPreviewStore keeps previews in Redis so they survive process restarts
// and are shared across gateway replicas.
type RedisPreviewStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPreviewStore builds a store over the given client.
func NewRedisPreviewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisPreviewStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisPreviewStore{client: client, ttl: ttl, logger: logger}
}

func (s *RedisPreviewStore) Put(ctx context.Context, preview SchedulePreview) error {
	raw, err := json.Marshal(preview)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode preview")
	}
	if err := s.client.Set(ctx, previewKeyPrefix+preview.PreviewID, raw, s.ttl).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store preview")
	}
	return nil
}

func (s *RedisPreviewStore) Get(ctx context.Context, previewID string) (*SchedulePreview, error) {
	raw, err := s.client.Get(ctx, previewKeyPrefix+previewID).Bytes()
	if err == redis.Nil {
		return nil, appErrors.ErrPreviewExpired
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load preview")
	}
	var preview SchedulePreview
	if err := json.Unmarshal(raw, &preview); err != nil {
		s.logger.Warn("dropping undecodable preview", zap.String("preview_id", previewID), zap.Error(err))
		return nil, appErrors.ErrPreviewExpired
	}
	return &preview, nil
}

func (s *RedisPreviewStore) Delete(ctx context.Context, previewID string) error {
	return s.client.Del(ctx, previewKeyPrefix+previewID).Err()
}

// MemoryPreviewStore is the fallback used when Redis is not configured, and
// the store tests run against. Expiry is checked lazily on read.
type MemoryPreviewStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	entries map[string]memoryPreviewEntry
}

type memoryPreviewEntry struct {
	preview   SchedulePreview
	expiresAt time.Time
}

// NewMemoryPreviewStore builds an in-process store with the given TTL.
func NewMemoryPreviewStore(ttl time.Duration) *MemoryPreviewStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryPreviewStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryPreviewEntry),
	}
}

func (s *MemoryPreviewStore) Put(_ context.Context, preview SchedulePreview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[preview.PreviewID] = memoryPreviewEntry{
		preview:   preview,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryPreviewStore) Get(_ context.Context, previewID string) (*SchedulePreview, error) {
	s.mu.RLock()
	entry, ok := s.entries[previewID]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return nil, appErrors.ErrPreviewExpired
	}
	preview := entry.preview
	return &preview, nil
}

func (s *MemoryPreviewStore) Delete(_ context.Context, previewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, previewID)
	return nil
}
