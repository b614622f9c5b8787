// Package handler is the thin HTTP layer over the saves service. It
// delegates to the service without embedding codec logic so transport
// concerns stay isolated.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"saveedit/internal/platform/middleware"
	"saveedit/internal/savefile"
	"saveedit/internal/saves/models"
	"saveedit/internal/saves/pathhint"
	dErrors "saveedit/pkg/domain-errors"
	"saveedit/pkg/platform/httputil"
)

// Service defines the save-editing operations the handler needs.
type Service interface {
	Upload(ctx context.Context, filename string, data []byte, platformID string, platform savefile.Platform) (*models.UploadResult, error)
	Items(ctx context.Context, sessionID string) (map[string]savefile.DecodedItem, error)
	ApplyEdits(ctx context.Context, sessionID string, edits map[string]savefile.Stats) (*models.EditResult, error)
	Download(ctx context.Context, sessionID string) (models.DownloadResult, error)
	BulkDownload(ctx context.Context, sessionIDs []string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) error
}

// Handler handles the /api/saves endpoints.
type Handler struct {
	logger         *slog.Logger
	saves          Service
	maxUploadBytes int64
	maxBulkSaves   int
}

// New creates a new saves Handler.
func New(saves Service, logger *slog.Logger, maxUploadBytes int64, maxBulkSaves int) *Handler {
	return &Handler{
		logger:         logger,
		saves:          saves,
		maxUploadBytes: maxUploadBytes,
		maxBulkSaves:   maxBulkSaves,
	}
}

// Register registers the saves routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	savesRouter := chi.NewRouter()
	savesRouter.Use(middleware.Recovery(h.logger))
	savesRouter.Use(middleware.RequestID)
	savesRouter.Use(middleware.Logger(h.logger))
	savesRouter.Use(middleware.Timeout(30 * time.Second))
	savesRouter.Post("/api/saves", h.handleUpload)
	savesRouter.Get("/api/saves/path-hints", h.handlePathHints)
	savesRouter.Get("/api/saves/{sessionID}/items", h.handleItems)
	savesRouter.Patch("/api/saves/{sessionID}/items", h.handleApplyEdits)
	savesRouter.Get("/api/saves/{sessionID}/download", h.handleDownload)
	savesRouter.Delete("/api/saves/{sessionID}", h.handleDelete)
	savesRouter.Post("/api/saves/bulk-download", h.handleBulkDownload)

	r.Mount("/", savesRouter)
}

// handleUpload accepts a multipart save upload: one file under "save" plus
// "platform" and "platform_id" form fields.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.WarnContext(ctx, "rejected save upload",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("multipart upload required, at most %d bytes", h.maxUploadBytes)))
		return
	}

	platformID := r.FormValue("platform_id")
	if platformID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "platform_id form field is required"))
		return
	}
	platform, err := parsePlatform(r.FormValue("platform"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	file, header, err := r.FormFile("save")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "save file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "could not read uploaded file"))
		return
	}

	result, err := h.saves.Upload(ctx, header.Filename, data, platformID, platform)
	if err != nil {
		h.logger.WarnContext(ctx, "save upload failed",
			"request_id", requestID,
			"filename", header.Filename,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	items, err := h.saves.Items(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleApplyEdits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var req models.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Edits) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "edits must not be empty"))
		return
	}

	result, err := h.saves.ApplyEdits(ctx, sessionID, req.Edits)
	if err != nil {
		h.logger.WarnContext(ctx, "edit failed",
			"request_id", middleware.GetRequestID(ctx),
			"session_id", sessionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.saves.Download(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	_, _ = w.Write(result.Data)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.saves.Delete(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBulkDownload(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.SessionIDs) > h.maxBulkSaves {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("at most %d saves per archive", h.maxBulkSaves)))
		return
	}

	archive, err := h.saves.BulkDownload(r.Context(), req.SessionIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="saves.zip"`)
	_, _ = w.Write(archive)
}

func (h *Handler) handlePathHints(w http.ResponseWriter, r *http.Request) {
	platform, err := parsePlatform(r.URL.Query().Get("platform"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"paths": pathhint.Suggestions(platform),
	})
}

func parsePlatform(raw string) (savefile.Platform, error) {
	switch savefile.Platform(raw) {
	case savefile.PlatformSteam, savefile.PlatformEpic, savefile.PlatformAuto:
		return savefile.Platform(raw), nil
	case "":
		return savefile.PlatformAuto, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "platform must be steam, epic, or auto")
}
