package model

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes raw paging input.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pages returns how many pages hold total items.
func (p Page) Pages(total int64) int64 {
	if p.Size <= 0 {
		return 0
	}
	return (total + int64(p.Size) - 1) / int64(p.Size)
}
