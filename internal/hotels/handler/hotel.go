package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hotelier/internal/hotels/service"
	apperrors "hotelier/pkg/errors"
	httputil "hotelier/pkg/http"
	"hotelier/pkg/logger"
	"hotelier/pkg/middleware"
	"hotelier/pkg/model"
)

type HotelHandler struct {
	service service.HotelService
	log     *logger.Logger
}

func NewHotelHandler(service service.HotelService, log *logger.Logger) *HotelHandler {
	return &HotelHandler{
		service: service,
		log:     log,
	}
}

func (h *HotelHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *HotelHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Actor identification required"))
	}
	return actor, ok
}

func (h *HotelHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var hotel model.Hotel
	if err := json.NewDecoder(r.Body).Decode(&hotel); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), actor, &hotel); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, hotel); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *HotelHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hotel, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, hotel); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *HotelHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, perPage, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	offset := int64(page-1) * int64(perPage)
	hotels, total, err := h.service.GetAll(r.Context(), perPage, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if hotels == nil {
		hotels = []*model.Hotel{}
	}

	if err := httputil.WritePaginated(w, hotels, httputil.NewPageMeta(page, perPage, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *HotelHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Update")
	if !ok {
		return
	}

	var updates model.HotelUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), actor, ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HotelHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Delete")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HotelHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/hotels", h.Create)
	router.GET("/api/v1/hotels", h.GetAll)
	router.GET("/api/v1/hotels/id/:id", h.GetByID)
	router.PATCH("/api/v1/hotels/id/:id", h.Update)
	router.DELETE("/api/v1/hotels/id/:id", h.Delete)
}
