package book

import (
	"context"
	"iter"
	"strings"

	"libraryadmin/internal/id"
	"libraryadmin/internal/validation"
)

// Service provides book-related business logic.
type Service struct {
	repo      Repository
	validator *validation.Validator
	metadata  MetadataSource
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New()}
}

// List returns the catalog ordered ascending by sort.
func (s *Service) List(ctx context.Context, sort string) (iter.Seq2[Book, error], error) {
	key, err := ParseSortKey(sort)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, key), nil
}

// Search lists the catalog ordered by sort and projects it through f.
func (s *Service) Search(ctx context.Context, sort string, f Filter) ([]Book, error) {
	seq, err := s.List(ctx, sort)
	if err != nil {
		return nil, err
	}
	return f.Apply(seq)
}

// ListAvailable returns the books with at least one copy on the shelf, ordered by title.
func (s *Service) ListAvailable(ctx context.Context) ([]Book, error) {
	return Filter{}.Apply(s.repo.ListAvailable(ctx))
}

// Categories returns the distinct categories in the catalog.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return Categories(s.repo.List(ctx, SortCategory))
}

// Get returns a book by id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.Get(ctx, id)
}

// Create validates in and stores a new book.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return Book{}, err
	}

	b := Book{
		Title:           strings.TrimSpace(in.Title),
		Author:          strings.TrimSpace(in.Author),
		ISBN:            strings.TrimSpace(in.ISBN),
		Category:        strings.TrimSpace(in.Category),
		TotalCopies:     1,
		PublicationYear: in.PublicationYear,
	}
	if in.TotalCopies != nil {
		b.TotalCopies = *in.TotalCopies
	}
	b.AvailableCopies = b.TotalCopies
	if in.AvailableCopies != nil {
		b.AvailableCopies = *in.AvailableCopies
	}
	if err := b.CheckCopies(); err != nil {
		return Book{}, err
	}

	var err error
	if b.ID, err = id.Generate(id.PrefixBook); err != nil {
		return Book{}, err
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Update replaces the supplied fields of the book with the given id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return Book{}, err
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
