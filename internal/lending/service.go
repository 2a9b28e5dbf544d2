package lending

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"libraryadmin/internal/book"
	"libraryadmin/internal/fine"
	"libraryadmin/internal/id"
	"libraryadmin/internal/money"
	"libraryadmin/internal/student"
	"libraryadmin/internal/validation"
)

// Config holds lending settings.
type Config struct {
	FineRate money.Amount
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Service runs the issue/return workflow and the fine rule.
type Service struct {
	repo      Repository
	books     BookLister
	students  StudentLister
	rate      money.Amount
	now       func() time.Time
	log       *slog.Logger
	validator *validation.Validator
}

func NewService(repo Repository, books BookLister, students StudentLister, cfg Config, log *slog.Logger) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.FineRate <= 0 {
		cfg.FineRate = fine.DefaultRate
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:      repo,
		books:     books,
		students:  students,
		rate:      cfg.FineRate,
		now:       cfg.Now,
		log:       log,
		validator: validation.New(),
	}
}

func (s *Service) today() time.Time {
	return fine.Date(s.now())
}

// FineRate returns the configured per-day fine.
func (s *Service) FineRate() money.Amount {
	return s.rate
}

// Issue lends one copy of a book to a student until the due date.
func (s *Service) Issue(ctx context.Context, in IssueInput) (Transaction, error) {
	if err := s.validator.Validate(in); err != nil {
		return Transaction{}, err
	}
	due, err := time.Parse(DateLayout, strings.TrimSpace(in.DueDate))
	if err != nil {
		return Transaction{}, ErrInvalidDueDate.WithCause(err)
	}

	today := s.today()
	if due.Before(today) {
		return Transaction{}, ErrDueDateInPast
	}

	tx := Transaction{
		StudentID: strings.TrimSpace(in.StudentID),
		BookID:    strings.TrimSpace(in.BookID),
		IssueDate: today,
		DueDate:   due,
		Status:    StatusIssued,
	}
	if tx.ID, err = id.Generate(id.PrefixTransaction); err != nil {
		return Transaction{}, err
	}

	if err := s.repo.Issue(ctx, &tx); err != nil {
		return Transaction{}, err
	}

	s.log.InfoContext(ctx, "book issued",
		"transaction_id", tx.ID, "student_id", tx.StudentID, "book_id", tx.BookID,
		"due_date", tx.DueDate.Format(DateLayout))
	return tx, nil
}

// Return closes an issued transaction today and puts the copy back on the shelf.
func (s *Service) Return(ctx context.Context, txID string) (Transaction, error) {
	tx, err := s.repo.Return(ctx, txID, s.today())
	if err != nil {
		return Transaction{}, err
	}
	s.log.InfoContext(ctx, "book returned", "transaction_id", tx.ID, "book_id", tx.BookID)
	return tx, nil
}

// ApplyFine computes the fine owed on an overdue transaction and records it.
// A fine that is already set is never overwritten.
func (s *Service) ApplyFine(ctx context.Context, txID string) (Transaction, error) {
	tx, err := s.repo.Get(ctx, txID)
	if err != nil {
		return Transaction{}, err
	}
	if tx.FineAmount != nil {
		return Transaction{}, ErrFineAlreadyApplied
	}

	today := s.today()
	if tx.Status != StatusIssued || !fine.IsOverdue(tx.DueDate, today) {
		return Transaction{}, ErrNotOverdue
	}

	amount := fine.Calculate(tx.DueDate, today, s.rate)
	tx, err = s.repo.ApplyFine(ctx, txID, amount)
	if err != nil {
		return Transaction{}, err
	}

	s.log.InfoContext(ctx, "fine applied", "transaction_id", tx.ID, "amount", amount.String())
	return tx, nil
}

// Get returns one transaction.
func (s *Service) Get(ctx context.Context, txID string) (Transaction, error) {
	return s.repo.Get(ctx, txID)
}

// ListJoined returns transactions matching status joined with student and book
// names. When the store's join fails it falls back to listing the three
// collections and joining them here.
func (s *Service) ListJoined(ctx context.Context, status StatusFilter) ([]View, error) {
	views, err := s.repo.ListJoined(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "joined transaction query failed, joining locally", "error", err)
		views, err = Join(
			s.repo.List(ctx),
			s.students.List(ctx, student.SortName),
			s.books.List(ctx, book.SortTitle),
		)
		if err != nil {
			return nil, err
		}
	}

	out := make([]View, 0, len(views))
	for _, v := range views {
		if status.Match(v.Status) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Overdue returns issued transactions past their due date with the fine owed
// as of today, oldest due date first.
func (s *Service) Overdue(ctx context.Context) ([]OverdueItem, error) {
	views, err := s.ListJoined(ctx, StatusFilter(StatusIssued))
	if err != nil {
		return nil, err
	}

	today := s.today()
	items := []OverdueItem{}
	for _, v := range views {
		if !fine.IsOverdue(v.DueDate, today) {
			continue
		}
		items = append(items, OverdueItem{
			View:        v,
			DaysOverdue: fine.DaysOverdue(v.DueDate, today),
			FineDue:     fine.Calculate(v.DueDate, today, s.rate),
		})
	}
	slices.SortStableFunc(items, func(a, b OverdueItem) int {
		return a.DueDate.Compare(b.DueDate)
	})
	return items, nil
}

// Summarize aggregates an overdue list.
func (s *Service) Summarize(items []OverdueItem) Summary {
	sum := Summary{FineRate: s.rate, OverdueCount: len(items)}
	for _, it := range items {
		sum.TotalPendingFines += it.FineDue
	}
	return sum
}

// Summary returns the fine rate, overdue count and total fines owed today.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	items, err := s.Overdue(ctx)
	if err != nil {
		return Summary{}, err
	}
	return s.Summarize(items), nil
}

// Stats counts issued and returned transactions.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for tx, err := range s.repo.List(ctx) {
		if err != nil {
			return Stats{}, err
		}
		switch tx.Status {
		case StatusIssued:
			st.Issued++
		case StatusReturned:
			st.Returned++
		}
	}
	return st, nil
}

// SortRecentFirst orders transactions by issue date descending, then by
// creation time and id so equal dates have a stable order.
func SortRecentFirst(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return cmp.Or(
			b.IssueDate.Compare(a.IssueDate),
			b.CreatedAt.Compare(a.CreatedAt),
			strings.Compare(b.ID, a.ID),
		)
	})
}
