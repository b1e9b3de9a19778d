package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hotelier/internal/audit/service"
	apperrors "hotelier/pkg/errors"
	httputil "hotelier/pkg/http"
	"hotelier/pkg/logger"
	"hotelier/pkg/middleware"
	"hotelier/pkg/model"
)

type AuditLogHandler struct {
	service service.AuditService
	log     *logger.Logger
}

func NewAuditLogHandler(service service.AuditService, log *logger.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		service: service,
		log:     log,
	}
}

func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Actor identification required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	page, perPage, err := httputil.ExtractPage(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	offset := int64(page-1) * int64(perPage)
	entries, total, err := h.service.List(r.Context(), actor, filter, perPage, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if entries == nil {
		entries = []*model.AuditLogEntry{}
	}

	if err := httputil.WritePaginated(w, entries, httputil.NewPageMeta(page, perPage, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func parseAuditFilter(r *http.Request) (model.AuditFilter, error) {
	query := r.URL.Query()

	filter := model.AuditFilter{
		HotelID: query.Get("hotel_id"),
		ActorID: query.Get("actor_id"),
		Action:  query.Get("action"),
	}

	if s := query.Get("from"); s != "" {
		from, err := model.ParseDate(s)
		if err != nil {
			return model.AuditFilter{}, apperrors.InvalidInput("invalid from parameter: " + err.Error())
		}
		filter.From = from
	}
	if s := query.Get("to"); s != "" {
		to, err := model.ParseDate(s)
		if err != nil {
			return model.AuditFilter{}, apperrors.InvalidInput("invalid to parameter: " + err.Error())
		}
		filter.To = to
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return model.AuditFilter{}, apperrors.InvalidInput("to must not be before from")
	}

	return filter, nil
}

func (h *AuditLogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit-log", h.List)
}
