package service

import (
	"sync"

	"github.com/bureauplan/bureauplan-api/internal/models"
)

const failureLogCapacity = 5

// FailureLog is a bounded ring of recent parse rejections kept for operator
// diagnosis. It is the one piece of shared state in the generation pipeline;
// inject a fresh instance wherever isolation matters (tests do).
type FailureLog struct {
	mu       sync.Mutex
	capacity int
	records  []models.FailureRecord
}

// NewFailureLog builds an empty log with the default capacity.
func NewFailureLog() *FailureLog {
	return &FailureLog{capacity: failureLogCapacity}
}

// Append records a rejection, evicting the oldest entry beyond capacity.
func (l *FailureLog) Append(rec models.FailureRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	if len(l.records) > l.capacity {
		l.records = l.records[len(l.records)-l.capacity:]
	}
}

// List returns a copy of the retained records in arrival order.
func (l *FailureLog) List() []models.FailureRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.FailureRecord, len(l.records))
	copy(out, l.records)
	return out
}
