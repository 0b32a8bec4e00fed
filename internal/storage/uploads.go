package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"superstore-dashboard/internal/models"

	_ "modernc.org/sqlite"
)

// ErrNoUpload is returned by Latest when nothing has been uploaded.
var ErrNoUpload = errors.New("no upload stored")

// UploadStore keeps uploaded dataset files in SQLite. Only the newest upload
// is active; Save replaces earlier ones.
type UploadStore struct {
	db *sql.DB
}

func NewUploadStore(dbPath string) (*UploadStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &UploadStore{db: db}, nil
}

func (s *UploadStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores content under a fresh id and drops any older upload.
func (s *UploadStore) Save(ctx context.Context, filename string, content []byte) (*models.Upload, error) {
	upload := &models.Upload{
		ID:        uuid.NewString(),
		Filename:  filename,
		Size:      int64(len(content)),
		CreatedAt: time.Now().UTC(),
		Content:   content,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM uploads`); err != nil {
		return nil, fmt.Errorf("clear uploads: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO uploads (id, filename, size, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		upload.ID, upload.Filename, upload.Size, upload.Content, upload.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert upload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upload: %w", err)
	}
	return upload, nil
}

// Latest returns the active upload or ErrNoUpload.
func (s *UploadStore) Latest(ctx context.Context) (*models.Upload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, size, content, created_at FROM uploads ORDER BY created_at DESC, rowid DESC LIMIT 1`)

	var (
		upload    models.Upload
		createdAt string
	)
	if err := row.Scan(&upload.ID, &upload.Filename, &upload.Size, &upload.Content, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoUpload
		}
		return nil, fmt.Errorf("query latest upload: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	upload.CreatedAt = ts
	return &upload, nil
}

// Clear removes every stored upload.
func (s *UploadStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM uploads`); err != nil {
		return fmt.Errorf("clear uploads: %w", err)
	}
	return nil
}
