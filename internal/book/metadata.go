package book

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"libraryadmin/internal/apperr"
	"libraryadmin/internal/platform/openlibrary"
)

var (
	ErrMetadataNotFound    = apperr.NotFound("no metadata found for isbn")
	ErrMetadataUnavailable = apperr.New(apperr.CodeUnavailable, "metadata lookup is unavailable")
)

// Metadata is the subset of book fields an external catalog can prefill.
type Metadata struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	PublicationYear int    `json:"publication_year"`
}

// MetadataSource looks up book metadata by ISBN.
type MetadataSource interface {
	LookupISBN(ctx context.Context, isbn string) (Metadata, error)
}

// OpenLibrarySource adapts the Open Library client to MetadataSource.
type OpenLibrarySource struct {
	client *openlibrary.Client
}

func NewOpenLibrarySource(client *openlibrary.Client) *OpenLibrarySource {
	return &OpenLibrarySource{client: client}
}

func (s *OpenLibrarySource) LookupISBN(ctx context.Context, isbn string) (Metadata, error) {
	details, err := s.client.GetByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, openlibrary.ErrNotFound) {
			return Metadata{}, ErrMetadataNotFound
		}
		return Metadata{}, ErrMetadataUnavailable.WithCause(err)
	}

	m := Metadata{
		ISBN:            isbn,
		Title:           details.Title,
		PublicationYear: parseYear(details.PublishDate),
	}
	if len(details.Authors) > 0 {
		m.Author = details.Authors[0].Name
	}
	if len(details.Subjects) > 0 {
		m.Category = details.Subjects[0].Name
	}
	return m, nil
}

// parseYear pulls the last four-digit run out of free-form dates such as
// "March 2005" or "2005-03-01".
func parseYear(s string) int {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	year := 0
	for _, f := range fields {
		if len(f) == 4 {
			if y, err := strconv.Atoi(f); err == nil {
				year = y
			}
		}
	}
	return year
}

// WithMetadataSource enables ISBN lookups.
func (s *Service) WithMetadataSource(src MetadataSource) *Service {
	s.metadata = src
	return s
}

// Lookup prefills book fields for isbn from the configured metadata source.
func (s *Service) Lookup(ctx context.Context, isbn string) (Metadata, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return Metadata{}, apperr.Validation("isbn is required")
	}
	if s.metadata == nil {
		return Metadata{}, ErrMetadataUnavailable
	}
	return s.metadata.LookupISBN(ctx, isbn)
}
