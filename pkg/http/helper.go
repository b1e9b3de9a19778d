package http

import (
	"net/http"
	"strconv"

	"hotelier/pkg/config"
	apperrors "hotelier/pkg/errors"
)

// ExtractPage reads the 1-based page and per_page query parameters,
// applying the configured defaults and cap.
func ExtractPage(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	perPage := config.DefaultPerPage
	if s := query.Get("per_page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.InvalidInput("invalid per_page parameter: " + s)
		}
		perPage = v
	}
	if perPage > config.MaxPerPage {
		perPage = config.MaxPerPage
	}

	return page, perPage, nil
}
