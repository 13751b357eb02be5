package dialog

// Page computes one page window over an ordered list. The requested index is
// normalized with modulo arithmetic into [0, totalPages), so browsing "next"
// past the last page wraps to the first and "previous" before the first
// wraps to the last; cyclic browsing is deliberate, not an error.
//
// It returns the window, the 1-based display index, and the total page
// count, which is always at least 1 even for an empty list. Deterministic
// and side-effect free; safe to call on every render.
func Page[T any](items []T, pageSize, requested int) (window []T, display, total int) {
	if pageSize < 1 {
		pageSize = 1
	}
	total = (len(items) + pageSize - 1) / pageSize
	if total < 1 {
		total = 1
	}
	idx := ((requested % total) + total) % total
	start := idx * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], idx + 1, total
}
