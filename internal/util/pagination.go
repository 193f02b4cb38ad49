package util

import "strconv"

const (
	DefaultPageSize = 20
	// MaxPage keeps (page-1)*size far from int overflow.
	MaxPage = 100_000
)

// Calculate turns a 1-based page and a page size into an offset and limit.
func Calculate(page, size int) (from, limit int) {
	page = clampPage(page)
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

// ParsePage reads a page number from a query value, defaulting to 1 and
// clamping to MaxPage.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return clampPage(page)
}

func clampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}
