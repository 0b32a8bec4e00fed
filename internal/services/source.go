package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/storage"
)

// DatasetSource yields the dataset a dashboard run works on.
type DatasetSource interface {
	Open(ctx context.Context) (*models.Dataset, error)
	Upload(ctx context.Context, filename string, content []byte) (*models.Upload, error)
	Reset(ctx context.Context) error
}

// UploadRepository persists the bytes of the active upload.
type UploadRepository interface {
	Save(ctx context.Context, filename string, content []byte) (*models.Upload, error)
	Latest(ctx context.Context) (*models.Upload, error)
	Clear(ctx context.Context) error
}

// FileSource serves the latest upload when there is one and the default CSV
// file otherwise. The decoded default file is cached until its size or
// modification time changes, or the watcher reports a change.
type FileSource struct {
	path    string
	uploads UploadRepository
	logger  *slog.Logger

	mu         sync.RWMutex
	cached     *models.Dataset
	cachedMod  time.Time
	cachedSize int64

	watcher *fsnotify.Watcher
}

func NewFileSource(path string, uploads UploadRepository, logger *slog.Logger) *FileSource {
	if uploads == nil {
		uploads = storage.NewMemoryUploadStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:    path,
		uploads: uploads,
		logger:  logger,
	}
}

func (s *FileSource) Open(ctx context.Context) (*models.Dataset, error) {
	upload, err := s.uploads.Latest(ctx)
	switch {
	case err == nil:
		ds, err := LoadCSV(ctx, bytes.NewReader(upload.Content))
		if err != nil {
			return nil, err
		}
		ds.Name = upload.Filename
		ds.Uploaded = true
		return ds, nil
	case errors.Is(err, storage.ErrNoUpload):
		return s.openDefault(ctx)
	default:
		return nil, fmt.Errorf("read upload: %w", err)
	}
}

func (s *FileSource) openDefault(ctx context.Context) (*models.Dataset, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("stat default dataset: %w", err)}
	}

	s.mu.RLock()
	cached := s.cached
	fresh := cached != nil && info.ModTime().Equal(s.cachedMod) && info.Size() == s.cachedSize
	s.mu.RUnlock()
	if fresh {
		return cached, nil
	}

	start := time.Now()
	ds, err := LoadFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	ds.Name = filepath.Base(s.path)

	s.mu.Lock()
	s.cached = ds
	s.cachedMod = info.ModTime()
	s.cachedSize = info.Size()
	s.mu.Unlock()

	s.logger.Info("default dataset loaded",
		"path", s.path,
		"records", ds.Len(),
		"duration", time.Since(start))
	return ds, nil
}

// Upload validates content by decoding it and then makes it the active dataset.
func (s *FileSource) Upload(ctx context.Context, filename string, content []byte) (*models.Upload, error) {
	if _, err := LoadCSV(ctx, bytes.NewReader(content)); err != nil {
		return nil, err
	}
	upload, err := s.uploads.Save(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	s.logger.Info("dataset uploaded", "id", upload.ID, "filename", filename, "size", upload.Size)
	return upload, nil
}

// Reset drops the active upload so the default file is served again.
func (s *FileSource) Reset(ctx context.Context) error {
	if err := s.uploads.Clear(ctx); err != nil {
		return fmt.Errorf("clear uploads: %w", err)
	}
	return nil
}

// Invalidate forgets the cached default dataset.
func (s *FileSource) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Watch invalidates the cache whenever the default file is written,
// replaced or removed. It returns once the watch is registered; events are
// handled until ctx is done or Close is called.
func (s *FileSource) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors often replace files by rename, which
	// drops a watch held on the file itself.
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	s.mu.Lock()
	s.watcher = fsw
	s.mu.Unlock()

	go s.processEvents(ctx, fsw)

	s.logger.Info("dataset watcher started", "path", s.path)
	return nil
}

func (s *FileSource) processEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.Invalidate()
				s.logger.Info("default dataset changed", "path", s.path, "op", event.Op.String())
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("dataset watcher error", "error", err)
		}
	}
}

func (s *FileSource) Close() error {
	s.mu.Lock()
	fsw := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if fsw == nil {
		return nil
	}
	return fsw.Close()
}

// StaticSource serves a dataset that is already in memory. Uploads replace
// it until Reset restores the original.
type StaticSource struct {
	mu     sync.RWMutex
	base   *models.Dataset
	active *models.Dataset
}

func NewStaticSource(ds *models.Dataset) *StaticSource {
	return &StaticSource{base: ds, active: ds}
}

func (s *StaticSource) Open(_ context.Context) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, nil
}

func (s *StaticSource) Upload(ctx context.Context, filename string, content []byte) (*models.Upload, error) {
	ds, err := LoadCSV(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	ds.Name = filename
	ds.Uploaded = true

	s.mu.Lock()
	s.active = ds
	s.mu.Unlock()

	return &models.Upload{
		ID:        uuid.NewString(),
		Filename:  filename,
		Size:      int64(len(content)),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *StaticSource) Reset(_ context.Context) error {
	s.mu.Lock()
	s.active = s.base
	s.mu.Unlock()
	return nil
}
