package student

import (
	"context"
	"iter"
	"strings"

	"libraryadmin/internal/id"
	"libraryadmin/internal/validation"
)

// Service provides student registry operations.
type Service struct {
	repo      Repository
	validator *validation.Validator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New()}
}

func (s *Service) List(ctx context.Context, sort string) (iter.Seq2[Student, error], error) {
	key, err := ParseSortKey(sort)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, key), nil
}

// Search lists students ordered by sort and projects them through f.
func (s *Service) Search(ctx context.Context, sort string, f Filter) ([]Student, error) {
	seq, err := s.List(ctx, sort)
	if err != nil {
		return nil, err
	}
	return f.Apply(seq)
}

func (s *Service) Get(ctx context.Context, id string) (Student, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Student, error) {
	if err := s.validator.Validate(in); err != nil {
		return Student{}, err
	}

	st := Student{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Gender:      in.Gender,
	}
	if st.Gender == "" {
		st.Gender = GenderMale
	}

	var err error
	if st.ID, err = id.Generate(id.PrefixStudent); err != nil {
		return Student{}, err
	}
	if err := s.repo.Create(ctx, &st); err != nil {
		return Student{}, err
	}
	return st, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Student, error) {
	if err := s.validator.Validate(in); err != nil {
		return Student{}, err
	}

	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	in.Apply(&st)

	if err := s.repo.Update(ctx, &st); err != nil {
		return Student{}, err
	}
	return st, nil
}

// Delete removes a student. A missing id is ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
