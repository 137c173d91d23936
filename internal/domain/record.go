package domain

import (
	"strings"
	"time"
)

// Record is one tracked book entry.
//
// It is NOT tied to Redis, Postgres or CSV. Every store and codec maps
// into this structure.
type Record struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is assigned by the store on first save.
	// Zero means the record has never been persisted.
	ID int64 `json:"id"`

	// ─────────────────────────────
	// Book description
	// ─────────────────────────────

	// Title is the only mandatory field.
	Title string `json:"title"`

	// Author is optional. Empty means unknown.
	Author string `json:"author,omitempty"`

	// ─────────────────────────────
	// Reading state
	// ─────────────────────────────

	Status Status `json:"status"`

	// CurrentPage defaults to 0.
	CurrentPage int `json:"current_page"`

	// TotalPages is optional. CurrentPage may exceed it; Progress clamps.
	TotalPages *int `json:"total_pages,omitempty"`

	// ─────────────────────────────
	// Notes
	// ─────────────────────────────

	Summary  string `json:"summary,omitempty"`
	Thoughts string `json:"thoughts,omitempty"`

	// ─────────────────────────────
	// Timestamps (owned by the service layer)
	// ─────────────────────────────

	// CreatedAt is set once, on the first save.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every save.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsNew reports whether the record has not been stored yet.
func (r Record) IsNew() bool {
	return r.ID == 0
}

// HasTitle reports whether the title is non-blank.
func (r Record) HasTitle() bool {
	return strings.TrimSpace(r.Title) != ""
}

// Progress returns the completion percentage of the record.
func (r Record) Progress() int {
	current := r.CurrentPage
	return Percent(r.TotalPages, &current)
}

// IntPtr is a small helper for optional page counts.
func IntPtr(v int) *int {
	return &v
}
