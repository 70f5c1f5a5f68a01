package dto

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage applies the default page size and clamps out-of-range values
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// Offset returns the row offset of a normalized page
func Offset(page, limit int) int {
	return (page - 1) * limit
}
