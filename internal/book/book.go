package book

import (
	"strings"
	"time"

	"libraryadmin/internal/apperr"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = apperr.NotFound("book not found")
	// ErrHasTransactions is returned when deleting a book referenced by the lending ledger.
	ErrHasTransactions = apperr.Conflict("book has lending history and cannot be deleted")
	// ErrInvalidCopies is returned when available copies fall outside [0, total].
	ErrInvalidCopies = apperr.Validation("available_copies must be between 0 and total_copies")
	// ErrInvalidSort is returned for an order key outside the whitelist.
	ErrInvalidSort = apperr.Validation("unsupported sort key")
)

// Book represents a catalog entry and its copy counters.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	PublicationYear int       `json:"publication_year"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsAvailable reports whether at least one copy can be issued.
func (b Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// CheckCopies enforces 0 <= available <= total and total >= 1.
func (b Book) CheckCopies() error {
	if b.TotalCopies < 1 || b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return ErrInvalidCopies
	}
	return nil
}

// SortKey is a whitelisted column books can be listed by.
type SortKey string

const (
	SortTitle           SortKey = "title"
	SortAuthor          SortKey = "author"
	SortCategory        SortKey = "category"
	SortPublicationYear SortKey = "publication_year"
	SortCreatedAt       SortKey = "created_at"
)

// ParseSortKey validates s. Empty means title.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortTitle, nil
	case SortTitle, SortAuthor, SortCategory, SortPublicationYear, SortCreatedAt:
		return k, nil
	}
	return "", ErrInvalidSort
}

// CreateInput is the payload for creating a book. Copies default to 1 and
// available copies default to total copies.
type CreateInput struct {
	Title           string `json:"title" validate:"notblank"`
	Author          string `json:"author" validate:"notblank"`
	ISBN            string `json:"isbn" validate:"notblank"`
	Category        string `json:"category" validate:"notblank"`
	TotalCopies     *int   `json:"total_copies" validate:"omitempty,gte=1"`
	AvailableCopies *int   `json:"available_copies" validate:"omitempty,gte=0"`
	PublicationYear int    `json:"publication_year" validate:"gte=0"`
}

// UpdateInput replaces the supplied fields of a book; nil fields are kept.
//
// A new total_copies without available_copies moves available_copies by the
// same delta, so copies out on loan stay accounted for.
type UpdateInput struct {
	Title           *string `json:"title" validate:"omitempty,notblank"`
	Author          *string `json:"author" validate:"omitempty,notblank"`
	ISBN            *string `json:"isbn" validate:"omitempty,notblank"`
	Category        *string `json:"category" validate:"omitempty,notblank"`
	TotalCopies     *int    `json:"total_copies" validate:"omitempty,gte=1"`
	AvailableCopies *int    `json:"available_copies" validate:"omitempty,gte=0"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=0"`
}

// Apply copies the supplied fields onto b, which must be the stored book read
// in the same atomic unit as the write.
func (in UpdateInput) Apply(b *Book) error {
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		b.Author = strings.TrimSpace(*in.Author)
	}
	if in.ISBN != nil {
		b.ISBN = strings.TrimSpace(*in.ISBN)
	}
	if in.Category != nil {
		b.Category = strings.TrimSpace(*in.Category)
	}
	if in.TotalCopies != nil {
		b.AvailableCopies += *in.TotalCopies - b.TotalCopies
		b.TotalCopies = *in.TotalCopies
	}
	if in.AvailableCopies != nil {
		b.AvailableCopies = *in.AvailableCopies
	}
	if in.PublicationYear != nil {
		b.PublicationYear = *in.PublicationYear
	}
	return b.CheckCopies()
}
