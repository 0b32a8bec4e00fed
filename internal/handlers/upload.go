package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

const (
	uploadField     = "file"
	multipartMemory = 32 << 20
)

type UploadHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	maxBytes  int64
}

func NewUploadHandlers(analytics *services.Analytics, logger *slog.Logger, maxBytes int64) *UploadHandlers {
	return &UploadHandlers{
		analytics: analytics,
		logger:    logger,
		maxBytes:  maxBytes,
	}
}

// HandleUpload makes the posted CSV the active dataset. Browser form posts
// are redirected back to the dashboard; other clients get JSON.
func (h *UploadHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			errors.WriteError(w, h.logger, errors.TooLarge("Uploaded file exceeds the size limit"), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Expected a multipart form"), requestID)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Missing file field"), requestID)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Could not read uploaded file"), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	upload, err := h.analytics.Upload(ctx, filepath.Base(header.Filename), content)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	errors.WriteSuccess(w, upload)
}

// HandleReset returns to the default dataset.
func (h *UploadHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.analytics.Reset(ctx); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	errors.WriteSuccess(w, map[string]string{"status": "reset"})
}

// isTooLarge spots the size limit even when the multipart reader has
// flattened the error to its message.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return stderrors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
