package domain

import "time"

// PeriodStatus gates posting into an accounting period.
type PeriodStatus string

const (
	PeriodStatusOpen       PeriodStatus = "OPEN"
	PeriodStatusSoftClosed PeriodStatus = "SOFT_CLOSED"
	PeriodStatusHardClosed PeriodStatus = "HARD_CLOSED"
)

// AccountingPeriod is a posting window. Closed periods accept postings
// only from callers holding the override permission.
type AccountingPeriod struct {
	ID        string
	TenantID  string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    PeriodStatus
}

// Contains reports whether the date falls inside the period, inclusive
// on both ends.
func (p *AccountingPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// IsClosed reports whether the period is soft or hard closed.
func (p *AccountingPeriod) IsClosed() bool {
	return p.Status == PeriodStatusSoftClosed || p.Status == PeriodStatusHardClosed
}

// CanTransitionTo reports whether the status change is allowed. A period
// closes in stages, OPEN to SOFT_CLOSED to HARD_CLOSED, and only a soft
// close can be reopened. Hard close is terminal.
func (p *AccountingPeriod) CanTransitionTo(next PeriodStatus) bool {
	switch p.Status {
	case PeriodStatusOpen:
		return next == PeriodStatusSoftClosed
	case PeriodStatusSoftClosed:
		return next == PeriodStatusOpen || next == PeriodStatusHardClosed
	default:
		return false
	}
}
