package student

import (
	"context"
	"iter"
)

// Repository defines the contract for student data storage. List is lazy and
// queries the store again on every iteration.
type Repository interface {
	List(ctx context.Context, sort SortKey) iter.Seq2[Student, error]
	Get(ctx context.Context, id string) (Student, error)
	Create(ctx context.Context, s *Student) error
	Update(ctx context.Context, s *Student) error
	Delete(ctx context.Context, id string) error
}
