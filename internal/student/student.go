package student

import (
	"strings"
	"time"

	"libraryadmin/internal/apperr"
)

var (
	// ErrNotFound is returned when a student is not found.
	ErrNotFound = apperr.NotFound("student not found")
	// ErrHasTransactions is returned when deleting a student referenced by the lending ledger.
	ErrHasTransactions = apperr.Conflict("student has lending history and cannot be deleted")
	ErrInvalidSort     = apperr.Validation("unsupported sort key")
)

// Gender values accepted for a student.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Student represents a library member.
type Student struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Gender      string    `json:"gender"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SortKey is a whitelisted column students can be listed by.
type SortKey string

const (
	SortName      SortKey = "name"
	SortEmail     SortKey = "email"
	SortCreatedAt SortKey = "created_at"
)

// ParseSortKey validates s. Empty means name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortName, nil
	case SortName, SortEmail, SortCreatedAt:
		return k, nil
	}
	return "", ErrInvalidSort
}

// CreateInput is the payload for registering a student. Gender defaults to Male.
type CreateInput struct {
	Name        string `json:"name" validate:"notblank"`
	Email       string `json:"email" validate:"notblank"`
	PhoneNumber string `json:"phone_number" validate:"notblank"`
	Gender      string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
}

// UpdateInput replaces the supplied fields of a student; nil fields are kept.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Email       *string `json:"email" validate:"omitempty,notblank"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,notblank"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
}

// Apply copies the supplied fields onto s, trimmed.
func (in UpdateInput) Apply(s *Student) {
	if in.Name != nil {
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		s.Email = strings.TrimSpace(*in.Email)
	}
	if in.PhoneNumber != nil {
		s.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.Gender != nil {
		s.Gender = *in.Gender
	}
}
