package store

import (
	"time"

	"github.com/loveletters/loveletters-server/internal/domain"
)

// ListFilter narrows ListLetters. Zero-valued fields are inactive, and all
// active fields are combined with AND.
type ListFilter struct {
	// Category and Mood match exactly.
	Category domain.Category
	Mood     domain.Mood

	// IsFavorite matches exactly when non-nil.
	IsFavorite *bool

	// Recipient matches case-insensitive substrings.
	Recipient string

	// Author matches case-insensitively and exactly.
	Author string

	// Search matches case-insensitive substrings of the title, content,
	// recipient or any single tag.
	Search string

	// CreatedFrom and CreatedTo are inclusive bounds on CreatedAt.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// IsZero reports whether no filter is active.
func (f ListFilter) IsZero() bool {
	return f.Category == "" && f.Mood == "" && f.IsFavorite == nil && f.Recipient == "" &&
		f.Author == "" && f.Search == "" && f.CreatedFrom == nil && f.CreatedTo == nil
}
