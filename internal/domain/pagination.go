package domain

import (
	"fmt"
	"math"
)

// Listing defaults applied when page or limit are omitted.
const (
	DefaultPage     = 1
	DefaultPageSize = 5
)

// PaginationParams holds offset-based pagination parameters for list queries.
// Page is 1-indexed.
type PaginationParams struct {
	Page     int
	PageSize int
}

// NewPaginationParams validates page and pageSize. Both must be at least 1 and
// the resulting offset must fit in an int.
func NewPaginationParams(page, pageSize int) (PaginationParams, error) {
	if page < 1 {
		return PaginationParams{}, fmt.Errorf("%w: page must be a positive integer", ErrInvalidInput)
	}
	if pageSize < 1 {
		return PaginationParams{}, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidInput)
	}
	if page-1 > math.MaxInt/pageSize {
		return PaginationParams{}, fmt.Errorf("%w: page is out of range for limit %d", ErrInvalidInput, pageSize)
	}
	return PaginationParams{Page: page, PageSize: pageSize}, nil
}

// Offset returns how many records precede the current page: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
