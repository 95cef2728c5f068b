package volprofile

// Page describes one slice of a paginated list. Start and End are slice
// bounds into the full list.
type Page struct {
	Number     int
	Size       int
	TotalPages int
	Start      int
	End        int
}

// Paginate clamps page into range and returns the bounds for it.
func Paginate(total, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page{Number: page, Size: pageSize, TotalPages: totalPages, Start: start, End: end}
}

// PageWindow 返回以当前页为中心、最多 width 个的页码。
func PageWindow(current, totalPages, width int) []int {
	if totalPages <= 0 || width <= 0 {
		return nil
	}
	start := max(1, current-width/2)
	end := min(totalPages, start+width-1)
	if end-start+1 < width {
		start = max(1, end-width+1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
