package dto

import "github.com/polkiloo/fueldelivery/internal/domain/model"

// Pagination describes the window of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination builds pagination metadata for page out of total items.
func NewPagination(page model.Page, total int64) Pagination {
	return Pagination{Page: page.Number, Limit: page.Size, Total: total, Pages: page.Pages(total)}
}
