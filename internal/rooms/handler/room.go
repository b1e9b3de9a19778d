package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hotelier/internal/rooms/service"
	apperrors "hotelier/pkg/errors"
	httputil "hotelier/pkg/http"
	"hotelier/pkg/logger"
	"hotelier/pkg/middleware"
	"hotelier/pkg/model"
)

type RoomHandler struct {
	service service.RoomService
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *RoomHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Actor identification required"))
	}
	return actor, ok
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}
	room.HotelID = ps.ByName("id")

	if err := h.service.Create(r.Context(), actor, &room); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, room); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetInHotel(r.Context(), ps.ByName("id"), ps.ByName("roomID"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *RoomHandler) GetByHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page, perPage, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, "GetByHotel", err)
		return
	}

	offset := int64(page-1) * int64(perPage)
	rooms, total, err := h.service.GetByHotel(r.Context(), ps.ByName("id"), perPage, offset)
	if err != nil {
		h.writeError(w, "GetByHotel", err)
		return
	}

	if rooms == nil {
		rooms = []*model.Room{}
	}

	if err := httputil.WritePaginated(w, rooms, httputil.NewPageMeta(page, perPage, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByHotel", "error", err)
	}
}

func (h *RoomHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	from, err := model.ParseDate(query.Get("from"))
	if err != nil {
		h.writeError(w, "Availability", apperrors.InvalidInput("invalid from parameter: "+err.Error()))
		return
	}
	to, err := model.ParseDate(query.Get("to"))
	if err != nil {
		h.writeError(w, "Availability", apperrors.InvalidInput("invalid to parameter: "+err.Error()))
		return
	}

	rooms, err := h.service.Availability(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "error", err)
	}
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Update")
	if !ok {
		return
	}

	var updates model.RoomUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), actor, ps.ByName("id"), ps.ByName("roomID"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Delete")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id"), ps.ByName("roomID")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

// Routes nest under the hotel so every room operation names the hotel
// it acts within.
func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/hotels/id/:id/rooms", h.Create)
	router.GET("/api/v1/hotels/id/:id/rooms", h.GetByHotel)
	router.GET("/api/v1/hotels/id/:id/rooms/availability", h.Availability)
	router.GET("/api/v1/hotels/id/:id/rooms/id/:roomID", h.GetByID)
	router.PATCH("/api/v1/hotels/id/:id/rooms/id/:roomID", h.Update)
	router.DELETE("/api/v1/hotels/id/:id/rooms/id/:roomID", h.Delete)
}
