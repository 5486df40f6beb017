package domain

import "time"

// TimeEndOfTime is the sentinel "+infinity" end of an open bitemporal
// interval.
var TimeEndOfTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// TemporalBalance is one version of an account balance under two
// independent time dimensions: valid time (when the balance was true in
// business reality) and transaction time (when the system recorded it).
// The ledger of these records is append-only; superseding a balance
// closes the open record and inserts a new one, it never overwrites.
type TemporalBalance struct {
	ID                   string
	TenantID             string
	EntityID             string
	AccountCode          string
	Balance              Money
	ValidTimeStart       time.Time
	ValidTimeEnd         time.Time
	TransactionTimeStart time.Time
	TransactionTimeEnd   time.Time
}

// IsOpen reports whether this is the current record on both dimensions.
func (b *TemporalBalance) IsOpen() bool {
	return b.ValidTimeEnd.Equal(TimeEndOfTime) && b.TransactionTimeEnd.Equal(TimeEndOfTime)
}

// CoversValidTime reports whether the balance was true in business
// reality at the given instant.
func (b *TemporalBalance) CoversValidTime(at time.Time) bool {
	return !b.ValidTimeStart.After(at) && b.ValidTimeEnd.After(at)
}

// CoversTransactionTime reports whether the system believed this record
// at the given instant.
func (b *TemporalBalance) CoversTransactionTime(at time.Time) bool {
	return !b.TransactionTimeStart.After(at) && b.TransactionTimeEnd.After(at)
}
