package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hotelier/internal/reservations/repository"
	"hotelier/internal/reservations/service"
	apperrors "hotelier/pkg/errors"
	httputil "hotelier/pkg/http"
	"hotelier/pkg/logger"
	"hotelier/pkg/middleware"
	"hotelier/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *ReservationHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Actor identification required"))
	}
	return actor, ok
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}
	reservation.HotelID = ps.ByName("id")

	warnings, err := h.service.Create(r.Context(), actor, &reservation)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreatedWithWarnings(w, reservation, warnings); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"), ps.ByName("reservationID"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filter, err := parseListFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	filter.HotelID = ps.ByName("id")

	page, perPage, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	offset := int64(page-1) * int64(perPage)
	reservations, total, err := h.service.List(r.Context(), filter, perPage, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if reservations == nil {
		reservations = []*model.Reservation{}
	}

	if err := httputil.WritePaginated(w, reservations, httputil.NewPageMeta(page, perPage, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Update")
	if !ok {
		return
	}

	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	warnings, err := h.service.Update(r.Context(), actor, ps.ByName("id"), ps.ByName("reservationID"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if len(warnings) > 0 {
		if err := httputil.WriteSuccessWithWarnings(w, nil, warnings); err != nil {
			h.log.Error("failed to write success response", "handler", "Update", "error", err)
		}
		return
	}
	httputil.WriteNoContent(w)
}

type transitionRequest struct {
	Status model.ReservationStatus `json:"status"`
}

func (h *ReservationHandler) Transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Transition")
	if !ok {
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Transition", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.Status == "" {
		h.writeError(w, "Transition", apperrors.InvalidInput("status is required"))
		return
	}

	reservation, warnings, err := h.service.Transition(r.Context(), actor, ps.ByName("id"), ps.ByName("reservationID"), req.Status)
	if err != nil {
		h.writeError(w, "Transition", err)
		return
	}

	if err := httputil.WriteSuccessWithWarnings(w, reservation, warnings); err != nil {
		h.log.Error("failed to write success response", "handler", "Transition", "error", err)
	}
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Delete")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id"), ps.ByName("reservationID")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func parseListFilter(r *http.Request) (repository.ListFilter, error) {
	query := r.URL.Query()

	filter := repository.ListFilter{
		RoomID: query.Get("room_id"),
		UserID: query.Get("user_id"),
	}

	if s := query.Get("status"); s != "" {
		status := model.ReservationStatus(s)
		if !model.ValidStatus(status) {
			return repository.ListFilter{}, apperrors.InvalidInput("invalid status parameter: " + s)
		}
		filter.Status = status
	}

	if s := query.Get("from"); s != "" {
		from, err := model.ParseDate(s)
		if err != nil {
			return repository.ListFilter{}, apperrors.InvalidInput("invalid from parameter: " + err.Error())
		}
		filter.From = from
	}
	if s := query.Get("to"); s != "" {
		to, err := model.ParseDate(s)
		if err != nil {
			return repository.ListFilter{}, apperrors.InvalidInput("invalid to parameter: " + err.Error())
		}
		filter.To = to
	}

	return filter, nil
}

// Routes nest under the hotel so every reservation operation names the
// hotel it acts within.
func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/hotels/id/:id/reservations", h.Create)
	router.GET("/api/v1/hotels/id/:id/reservations", h.List)
	router.GET("/api/v1/hotels/id/:id/reservations/id/:reservationID", h.GetByID)
	router.PATCH("/api/v1/hotels/id/:id/reservations/id/:reservationID", h.Update)
	router.POST("/api/v1/hotels/id/:id/reservations/id/:reservationID/transition", h.Transition)
	router.DELETE("/api/v1/hotels/id/:id/reservations/id/:reservationID", h.Delete)
}
