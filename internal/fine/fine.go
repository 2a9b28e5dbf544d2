// Package fine implements the overdue fine rule.
//
// Both the due date and "today" are reduced to calendar dates before any
// arithmetic, so the time of day at which a fine is computed never changes it.
package fine

import (
	"time"

	"libraryadmin/internal/money"
)

// DefaultRate is the fine charged per overdue day.
var DefaultRate = money.Rupees(2)

const day = 24 * time.Hour

// Date reduces t to midnight UTC of its calendar date in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysOverdue returns the number of whole calendar days today is past due.
// The result is negative when due is still in the future.
func DaysOverdue(due, today time.Time) int64 {
	return int64(Date(today).Sub(Date(due)) / day)
}

// Calculate returns max(0, daysOverdue * rate). Returns 0 when today == due.
func Calculate(due, today time.Time, rate money.Amount) money.Amount {
	days := DaysOverdue(due, today)
	if days <= 0 {
		return 0
	}
	return rate.Times(days)
}

// IsOverdue reports whether a due date has strictly passed.
func IsOverdue(due, today time.Time) bool {
	return Date(due).Before(Date(today))
}
