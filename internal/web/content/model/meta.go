package model

import "time"

// Meta is the part every stored entity shares.
type Meta struct {
	ID        string     `json:"id"`
	Order     *int       `json:"order,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DocID returns the document id.
func (m Meta) DocID() string {
	return m.ID
}

// OrderValue returns `order` and whether it is set.
func (m Meta) OrderValue() (int, bool) {
	if m.Order == nil {
		return 0, false
	}

	return *m.Order, true
}

// CreatedTime returns `createdAt`, zero when absent.
func (m Meta) CreatedTime() time.Time {
	if m.CreatedAt == nil {
		return time.Time{}
	}

	return *m.CreatedAt
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
