// Package lending implements the issue/return ledger and the fine workflow.
//
// Every ledger mutation and the matching change to a book's available copies
// happen in one atomic store operation (see Repository).
package lending

import (
	"time"

	"libraryadmin/internal/apperr"
	"libraryadmin/internal/money"
)

var (
	ErrNotFound           = apperr.NotFound("transaction not found")
	ErrNoCopiesAvailable  = apperr.Capacity("no copies of this book are available")
	ErrAlreadyReturned    = apperr.Conflict("book has already been returned")
	ErrFineAlreadyApplied = apperr.Conflict("fine has already been applied")
	ErrNotOverdue         = apperr.Validation("transaction is not overdue")
	ErrDueDateInPast      = apperr.Validation("due_date must not be before today")
	ErrInvalidDueDate     = apperr.Validation("due_date must be formatted as YYYY-MM-DD")
	ErrInvalidStatus      = apperr.Validation("status must be issued, returned or all")
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusIssued   Status = "issued"
	StatusReturned Status = "returned"
)

// Transaction records one issue of a book copy to a student.
type Transaction struct {
	ID         string        `json:"id"`
	StudentID  string        `json:"student_id"`
	BookID     string        `json:"book_id"`
	IssueDate  time.Time     `json:"issue_date"`
	DueDate    time.Time     `json:"due_date"`
	ReturnDate *time.Time    `json:"return_date"`
	Status     Status        `json:"status"`
	FineAmount *money.Amount `json:"fine_amount_paise"`
	CreatedAt  time.Time     `json:"created_at"`
}

// View is a transaction joined with the names shown on the lending screens.
type View struct {
	Transaction
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
	BookTitle    string `json:"book_title"`
	BookAuthor   string `json:"book_author"`
}

// OverdueItem is an overdue transaction with its fine computed as of today.
type OverdueItem struct {
	View
	DaysOverdue int64        `json:"days_overdue"`
	FineDue     money.Amount `json:"fine_due_paise"`
}

// Summary aggregates the overdue list.
type Summary struct {
	FineRate          money.Amount `json:"fine_rate_paise"`
	OverdueCount      int          `json:"overdue_count"`
	TotalPendingFines money.Amount `json:"total_pending_fines_paise"`
}

// Stats counts transactions by status.
type Stats struct {
	Issued   int `json:"issued"`
	Returned int `json:"returned"`
}

// StatusFilter selects transactions by status. Empty means all.
type StatusFilter string

const StatusAll StatusFilter = "all"

// ParseStatusFilter validates s.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(s); f {
	case "", StatusAll:
		return StatusAll, nil
	case StatusFilter(StatusIssued), StatusFilter(StatusReturned):
		return f, nil
	}
	return "", ErrInvalidStatus
}

func (f StatusFilter) Match(s Status) bool {
	return f == StatusAll || f == "" || Status(f) == s
}

// IssueInput is the payload for issuing a book.
type IssueInput struct {
	StudentID string `json:"student_id" validate:"required"`
	BookID    string `json:"book_id" validate:"required"`
	DueDate   string `json:"due_date" validate:"required"`
}
