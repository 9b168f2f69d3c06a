package entity

// CursorPage is one page of a descending-id keyset listing.
type CursorPage[T any] struct {
	Items      []T
	NextCursor *int64
	HasNext    bool
}

// NewCursorPage builds a page from rows fetched with limit size+1.
// When more than size rows were fetched the extra row only signals HasNext and is dropped.
// NextCursor is the id of the last kept row, nil for an empty page.
func NewCursorPage[T any](rows []T, size int, idOf func(T) int64) *CursorPage[T] {
	hasNext := len(rows) > size
	if hasNext {
		rows = rows[:size]
	}

	page := &CursorPage[T]{
		Items:   rows,
		HasNext: hasNext,
	}
	if len(rows) > 0 {
		next := idOf(rows[len(rows)-1])
		page.NextCursor = &next
	}

	return page
}
