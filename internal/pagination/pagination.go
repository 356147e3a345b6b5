package pagination

// Gap marks elided pages in WithGaps output.
const Gap = -1

func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Window returns up to size consecutive pages centred on current.
func Window(current, totalPages, size int) []int {
	if totalPages <= 0 || size <= 0 {
		return []int{}
	}
	current = clamp(current, totalPages)

	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > totalPages {
		end = totalPages
		start = end - size + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// WithGaps lists the first and last page plus two pages either side of
// current, with Gap between runs that are not adjacent.
func WithGaps(current, totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	current = clamp(current, totalPages)

	pages := make([]int, 0, 9)
	last := 0
	for p := 1; p <= totalPages; p++ {
		if p != 1 && p != totalPages && (p < current-2 || p > current+2) {
			continue
		}
		if last != 0 && p-last > 1 {
			pages = append(pages, Gap)
		}
		pages = append(pages, p)
		last = p
	}
	return pages
}

// Slice returns the items of a 1-based page.
func Slice[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
