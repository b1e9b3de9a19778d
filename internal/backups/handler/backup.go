package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hotelier/internal/backups/service"
	apperrors "hotelier/pkg/errors"
	httputil "hotelier/pkg/http"
	"hotelier/pkg/logger"
	"hotelier/pkg/middleware"
	"hotelier/pkg/model"
)

type BackupHandler struct {
	service service.BackupService
	log     *logger.Logger
}

func NewBackupHandler(service service.BackupService, log *logger.Logger) *BackupHandler {
	return &BackupHandler{
		service: service,
		log:     log,
	}
}

func (h *BackupHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *BackupHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Actor identification required"))
	}
	return actor, ok
}

type createBackupRequest struct {
	Type    model.BackupType `json:"type"`
	HotelID string           `json:"hotel_id,omitempty"`
}

func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var req createBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	record, err := h.service.Create(r.Context(), actor, req.Type, req.HotelID)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	// 202: the export runs asynchronously; poll the record for progress.
	if err := httputil.WriteJSON(w, http.StatusAccepted, httputil.SuccessResponse{Data: record}); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Create", "error", err)
	}
}

func (h *BackupHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "GetByID")
	if !ok {
		return
	}

	record, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BackupHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "GetAll")
	if !ok {
		return
	}

	page, perPage, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	offset := int64(page-1) * int64(perPage)
	records, total, err := h.service.GetAll(r.Context(), actor, r.URL.Query().Get("hotel_id"), perPage, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if records == nil {
		records = []*model.BackupRecord{}
	}

	if err := httputil.WritePaginated(w, records, httputil.NewPageMeta(page, perPage, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Download")
	if !ok {
		return
	}

	path, err := h.service.ArchivePath(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Download", err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	http.ServeFile(w, r, path)
}

func (h *BackupHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/backups", h.Create)
	router.GET("/api/v1/backups", h.GetAll)
	router.GET("/api/v1/backups/id/:id", h.GetByID)
	router.GET("/api/v1/backups/id/:id/download", h.Download)
}
