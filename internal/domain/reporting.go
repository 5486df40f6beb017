package domain

// TrialBalanceLine is the per-account raw material of a trial balance:
// opening and in-period debit/credit totals in minor units, as aggregated
// by the reporting store.
type TrialBalanceLine struct {
	AccountCode        string
	AccountName        string
	AccountType        AccountType
	Currency           Currency
	OpeningDebitCents  int64
	OpeningCreditCents int64
	PeriodDebitCents   int64
	PeriodCreditCents  int64
}

// OpeningBalanceCents is the signed opening balance, debit positive.
func (l TrialBalanceLine) OpeningBalanceCents() int64 {
	return l.OpeningDebitCents - l.OpeningCreditCents
}

// ClosingBalanceCents is the signed closing balance, debit positive.
func (l TrialBalanceLine) ClosingBalanceCents() int64 {
	return l.OpeningBalanceCents() + l.PeriodDebitCents - l.PeriodCreditCents
}

// AccountBalance is a signed per-account balance as of a date, debit
// positive, used by the consolidated balance sheet read path.
type AccountBalance struct {
	AccountCode  string
	AccountName  string
	AccountType  AccountType
	Currency     Currency
	BalanceCents int64
}
