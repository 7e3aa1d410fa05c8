package ordering

// Page is one page of a list whose pinned items repeat on every page.
type Page[T any] struct {
	Pinned []T `json:"pinned"`
	Items  []T `json:"items"`
	// Page is 1-based.
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	// EffectivePageSize is how many normal items a page holds.
	EffectivePageSize int `json:"effectivePageSize"`
	TotalPages        int `json:"totalPages"`
	TotalItems        int `json:"totalItems"`
	// Offset is the index of Items[0] within the full normal list.
	Offset int `json:"offset"`
}

// EffectivePageSize is pageSize minus the pinned count, never below 1,
// so a list with as many pinned items as the page size still pages through
// its normal items one at a time.
func EffectivePageSize(pageSize, pinned int) int {
	if eff := pageSize - pinned; eff > 0 {
		return eff
	}

	return 1
}

// Paginate returns page (1-based) of normal with every pinned item in front.
// Pages past the end carry the pinned items and no normal items.
func Paginate[T any](pinned, normal []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	eff := EffectivePageSize(pageSize, len(pinned))
	totalPages := len(normal) / eff
	if len(normal)%eff != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}
	// the first page past the end stands in for every later one
	if page > totalPages+1 {
		page = totalPages + 1
	}

	start := min((page-1)*eff, len(normal))
	end := start + min(eff, len(normal)-start)

	if pinned == nil {
		pinned = []T{}
	}

	return Page[T]{
		Pinned:            pinned,
		Items:             append([]T{}, normal[start:end]...),
		Page:              page,
		PageSize:          pageSize,
		EffectivePageSize: eff,
		TotalPages:        totalPages,
		TotalItems:        len(normal),
		Offset:            start,
	}
}
