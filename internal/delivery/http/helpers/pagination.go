package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventsapi/internal/domain"
)

// ParsePagination reads limit and page from the request query string.
// Missing values fall back to domain.DefaultPageSize and domain.DefaultPage;
// values that are not positive integers are rejected with domain.ErrInvalidInput.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	q := r.URL.Query()
	page, err := positiveInt(q.Get("page"), domain.DefaultPage, "page")
	if err != nil {
		return domain.PaginationParams{}, err
	}
	limit, err := positiveInt(q.Get("limit"), domain.DefaultPageSize, "limit")
	if err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit)
}

func positiveInt(s string, def int, name string) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
	}
	return v, nil
}
