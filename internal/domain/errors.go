package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for value-type and lookup failures.
var (
	// Money errors
	ErrInvalidCurrency      = errors.New("invalid currency code")
	ErrCurrencyMismatch     = errors.New("currency mismatch")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrNegativeResult       = errors.New("subtraction result would be negative")
	ErrFractionalMinorUnits = errors.New("amount is not a whole number of minor units")

	// Account errors
	ErrInvalidAccountType   = errors.New("invalid account type")
	ErrNormalBalanceInvalid = errors.New("normal balance does not match account type convention")

	// Entity errors
	ErrEntityNotFound             = errors.New("entity not found")
	ErrInvalidOwnershipPercentage = errors.New("ownership percentage must be between 0 and 100")
	ErrInvalidConsolidationMethod = errors.New("invalid consolidation method")
	ErrIntercompanyNoCounterparty = errors.New("intercompany entry requires a counterparty entity")

	// Period errors
	ErrPeriodNotFound          = errors.New("accounting period not found")
	ErrInvalidPeriodTransition = errors.New("invalid period status transition")

	// Reporting / closing errors
	ErrNothingToClose = errors.New("no revenue or expense balances to close")

	// Balance errors
	ErrNoBalanceHistory = errors.New("no balance history for account")

	// Idempotency errors
	ErrIdempotencyRecordNotFound = errors.New("idempotency record not found")
	ErrDuplicateIdempotencyKey   = errors.New("idempotency key already exists")

	// Entry errors
	ErrEntryNotFound = errors.New("journal entry not found")
)

// Error codes carried by the typed errors below. The command boundary
// never leaks an untyped failure: anything unrecognized is wrapped with
// CodeUnexpected.
const (
	CodeCommandValidationFailed   = "COMMAND_VALIDATION_FAILED"
	CodeUnbalancedEntry           = "UNBALANCED_ENTRY"
	CodeAccountNotFound           = "ACCOUNT_NOT_FOUND"
	CodePeriodClosed              = "PERIOD_CLOSED"
	CodeNoPeriodFound             = "NO_PERIOD_FOUND"
	CodeDuplicateEntry            = "DUPLICATE_ENTRY"
	CodeUnbalancedLedger          = "UNBALANCED_LEDGER"
	CodeConversionRateUnavailable = "CONVERSION_RATE_UNAVAILABLE"
	CodeUnexpected                = "UNEXPECTED_ERROR"
)

// Coder is implemented by typed domain errors that carry a machine-readable code.
type Coder interface {
	Code() string
}

// ErrorCode extracts the machine-readable code from an error, defaulting
// to CodeUnexpected for anything outside the domain taxonomy.
func ErrorCode(err error) string {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeUnexpected
}

// UnbalancedEntryError reports a journal entry whose debits and credits
// do not match exactly.
type UnbalancedEntryError struct {
	DebitCents  int64
	CreditCents int64
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("unbalanced journal entry: debits %d cents, credits %d cents", e.DebitCents, e.CreditCents)
}

func (e *UnbalancedEntryError) Code() string { return CodeUnbalancedEntry }

// CommandValidationError aggregates structural validation failures of a command.
type CommandValidationError struct {
	Errors []string
}

func (e *CommandValidationError) Error() string {
	return "command validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *CommandValidationError) Code() string { return CodeCommandValidationFailed }

// AccountNotFoundError reports a referenced account code that does not
// exist for the tenant.
type AccountNotFoundError struct {
	TenantID    string
	AccountCode string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found for tenant %s", e.AccountCode, e.TenantID)
}

func (e *AccountNotFoundError) Code() string { return CodeAccountNotFound }

// PeriodClosedError reports a posting into a closed accounting period by
// a caller without the override permission.
type PeriodClosedError struct {
	PeriodName  string
	Status      PeriodStatus
	PostingDate time.Time
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("period %s is %s; cannot post on %s", e.PeriodName, e.Status, e.PostingDate.Format("2006-01-02"))
}

func (e *PeriodClosedError) Code() string { return CodePeriodClosed }

// JournalEntryError is a typed journal posting failure identified by code
// alone, such as NO_PERIOD_FOUND.
type JournalEntryError struct {
	ErrCode string
	Message string
}

func (e *JournalEntryError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Message)
}

func (e *JournalEntryError) Code() string { return e.ErrCode }

// DuplicateEntryError reports an idempotency key reused with a different
// payload. A legitimate replay of the same payload is not an error.
type DuplicateEntryError struct {
	TenantID       string
	IdempotencyKey string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("idempotency key %s already used with a different payload for tenant %s", e.IdempotencyKey, e.TenantID)
}

func (e *DuplicateEntryError) Code() string { return CodeDuplicateEntry }

// UnbalancedLedgerError reports a trial balance whose debit and credit
// column totals differ. It carries both totals for diagnostics.
type UnbalancedLedgerError struct {
	TotalDebitCents  int64
	TotalCreditCents int64
}

func (e *UnbalancedLedgerError) Error() string {
	return fmt.Sprintf("trial balance out of balance: total debits %d cents, total credits %d cents", e.TotalDebitCents, e.TotalCreditCents)
}

func (e *UnbalancedLedgerError) Code() string { return CodeUnbalancedLedger }

// ConversionRateUnavailableError reports a missing exchange rate.
type ConversionRateUnavailableError struct {
	From Currency
	To   Currency
	AsOf time.Time
}

func (e *ConversionRateUnavailableError) Error() string {
	return fmt.Sprintf("no conversion rate from %s to %s as of %s", e.From, e.To, e.AsOf.Format("2006-01-02"))
}

func (e *ConversionRateUnavailableError) Code() string { return CodeConversionRateUnavailable }

// UnexpectedError wraps a failure that is not part of the domain taxonomy
// so the command boundary still reports a typed, coded error.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Code() string { return CodeUnexpected }

func (e *UnexpectedError) Unwrap() error { return e.Err }
