package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"superstore-dashboard/internal/models"
)

// MemoryUploadStore keeps the active upload in process memory. It is used
// when no database path is configured.
type MemoryUploadStore struct {
	mu     sync.RWMutex
	latest *models.Upload
}

func NewMemoryUploadStore() *MemoryUploadStore {
	return &MemoryUploadStore{}
}

func (s *MemoryUploadStore) Save(_ context.Context, filename string, content []byte) (*models.Upload, error) {
	upload := &models.Upload{
		ID:        uuid.NewString(),
		Filename:  filename,
		Size:      int64(len(content)),
		CreatedAt: time.Now().UTC(),
		Content:   slices.Clone(content),
	}

	s.mu.Lock()
	s.latest = upload
	s.mu.Unlock()
	return upload, nil
}

func (s *MemoryUploadStore) Latest(_ context.Context) (*models.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, ErrNoUpload
	}
	upload := *s.latest
	return &upload, nil
}

func (s *MemoryUploadStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.latest = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryUploadStore) Close() error { return nil }
