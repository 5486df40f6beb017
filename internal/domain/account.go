package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountType classifies an account in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeAsset:     true,
	AccountTypeLiability: true,
	AccountTypeEquity:    true,
	AccountTypeRevenue:   true,
	AccountTypeExpense:   true,
}

// IsValid checks if the account type is a known type.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// NormalBalance returns the side on which the account type conventionally
// carries its balance: Asset/Expense on the debit side, the rest on credit.
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// NormalBalance is the conventional balance side of an account.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "Debit"
	NormalBalanceCredit NormalBalance = "Credit"
)

// Account is a chart-of-accounts entry. It is created once and never
// mutated; removal is a tombstone timestamp, never a hard delete.
type Account struct {
	ID            string
	TenantID      string
	Code          string
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

// NewAccount validates and builds an account. The normal balance must
// match the account type convention.
func NewAccount(id, tenantID, code, name string, accountType AccountType, normalBalance NormalBalance, now time.Time) (*Account, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("account code is required")
	}
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, accountType)
	}
	if normalBalance != accountType.NormalBalance() {
		return nil, fmt.Errorf("%w: %s accounts carry a %s balance", ErrNormalBalanceInvalid, accountType, accountType.NormalBalance())
	}

	return &Account{
		ID:            id,
		TenantID:      tenantID,
		Code:          code,
		Name:          strings.TrimSpace(name),
		Type:          accountType,
		NormalBalance: normalBalance,
		CreatedAt:     now,
	}, nil
}

// IsDeleted reports whether the account carries a tombstone.
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}
