package http

import (
	"encoding/json"
	"math"
	"net/http"

	apperrors "hotelier/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// SuccessResponse is the envelope for single-resource responses. Warnings
// carry soft guards (e.g. guest count above room capacity) that do not
// block the operation.
type SuccessResponse struct {
	Data     any      `json:"data,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// PageMeta describes one page of a paginated listing. Pages are 1-based
// and LastPage is always ceil(total/per_page).
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

type PaginatedResponse struct {
	Data any      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NewPageMeta computes the meta block for a page. A zero total yields
// last_page 1 so "page 1 of an empty listing" is well-formed.
func NewPageMeta(page, perPage int, total int64) PageMeta {
	last := int(math.Ceil(float64(total) / float64(perPage)))
	if last < 1 {
		last = 1
	}
	return PageMeta{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    last,
	}
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteSuccessWithWarnings(w http.ResponseWriter, data any, warnings []string) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data, Warnings: warnings})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteCreatedWithWarnings(w http.ResponseWriter, data any, warnings []string) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data, Warnings: warnings})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WritePaginated(w http.ResponseWriter, data any, meta PageMeta) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{Data: data, Meta: meta})
}
