package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
)

// Synthetic account codes produced by the consolidated balance sheet.
const (
	// NCIAccountCode is the single synthetic equity line carrying the
	// total non-controlling interest of Full-method subsidiaries.
	NCIAccountCode = "3900-NCI"

	// InvestmentAccountCode is the single line an Equity-method
	// subsidiary collapses into.
	InvestmentAccountCode = "1800-INVESTMENT-SUB"
)

// ConsolidatedBalanceSheetService composes the consolidation read path:
// it resolves the entity tree, pulls each entity's balances as of a date
// and folds subsidiaries into the parent per their consolidation method.
//
// NCI presentation: one synthetic equity line (NCIAccountCode) totaling
// the unowned share of each Full-method subsidiary's net assets. Equity
// method subsidiaries collapse into a single investment line
// (InvestmentAccountCode) instead of rolling up line items.
type ConsolidatedBalanceSheetService struct {
	entityRepo       EntityRepository
	trialBalanceRepo TrialBalanceRepository
	consolidation    *ConsolidationService
}

// NewConsolidatedBalanceSheetService creates a new ConsolidatedBalanceSheetService.
func NewConsolidatedBalanceSheetService(entityRepo EntityRepository, trialBalanceRepo TrialBalanceRepository, consolidation *ConsolidationService) *ConsolidatedBalanceSheetService {
	return &ConsolidatedBalanceSheetService{
		entityRepo:       entityRepo,
		trialBalanceRepo: trialBalanceRepo,
		consolidation:    consolidation,
	}
}

// BalanceSheetLine is one consolidated line, signed, debit positive.
type BalanceSheetLine struct {
	AccountCode  string
	AccountName  string
	AccountType  domain.AccountType
	BalanceCents int64
}

// ConsolidatedBalanceSheet is the parent-plus-subsidiaries snapshot.
type ConsolidatedBalanceSheet struct {
	TenantID       string
	ParentEntityID string
	AsOf           time.Time
	Currency       domain.Currency
	Lines          []BalanceSheetLine
	NCICents       int64
}

// Build produces the consolidated snapshot for the parent entity and its
// (transitively consolidated) subsidiaries as of the date. All entities
// must report in the same currency.
func (s *ConsolidatedBalanceSheetService) Build(ctx context.Context, tenantID, parentEntityID string, asOf time.Time) (*ConsolidatedBalanceSheet, error) {
	parent, err := s.entityRepo.GetByID(ctx, tenantID, parentEntityID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.ErrEntityNotFound
	}

	lines, nciCents, err := s.consolidate(ctx, parent, asOf)
	if err != nil {
		return nil, err
	}

	sheet := &ConsolidatedBalanceSheet{
		TenantID:       tenantID,
		ParentEntityID: parentEntityID,
		AsOf:           asOf,
		Currency:       parent.Currency,
		NCICents:       nciCents,
	}

	codes := make([]string, 0, len(lines))
	for code := range lines {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		sheet.Lines = append(sheet.Lines, lines[code])
	}

	if nciCents != 0 {
		sheet.Lines = append(sheet.Lines, BalanceSheetLine{
			AccountCode:  NCIAccountCode,
			AccountName:  "Non-controlling interest",
			AccountType:  domain.AccountTypeEquity,
			BalanceCents: -nciCents,
		})
	}

	return sheet, nil
}

// consolidate returns the entity's own balances with every subsidiary
// folded in, plus the accumulated NCI of Full-method subsidiaries, in
// cents of net assets.
func (s *ConsolidatedBalanceSheetService) consolidate(ctx context.Context, entity *domain.Entity, asOf time.Time) (map[string]BalanceSheetLine, int64, error) {
	balances, err := s.trialBalanceRepo.GetAccountBalances(ctx, entity.TenantID, entity.ID, asOf)
	if err != nil {
		return nil, 0, err
	}

	lines := make(map[string]BalanceSheetLine)
	for _, b := range balances {
		if b.Currency != entity.Currency {
			return nil, 0, fmt.Errorf("%w: entity %s reports %s, balance in %s", domain.ErrCurrencyMismatch, entity.ID, entity.Currency, b.Currency)
		}
		line := lines[b.AccountCode]
		line.AccountCode = b.AccountCode
		line.AccountName = b.AccountName
		line.AccountType = b.AccountType
		line.BalanceCents += b.BalanceCents
		lines[b.AccountCode] = line
	}

	subsidiaries, err := s.entityRepo.ListSubsidiaries(ctx, entity.TenantID, entity.ID)
	if err != nil {
		return nil, 0, err
	}

	var nciCents int64
	for _, sub := range subsidiaries {
		if sub.Currency != entity.Currency {
			return nil, 0, fmt.Errorf("%w: subsidiary %s reports %s, parent %s", domain.ErrCurrencyMismatch, sub.ID, sub.Currency, entity.Currency)
		}

		subLines, subNCI, err := s.consolidate(ctx, sub, asOf)
		if err != nil {
			return nil, 0, err
		}
		nciCents += subNCI

		switch sub.ConsolidationMethod {
		case domain.ConsolidationFull:
			for code, subLine := range subLines {
				line := lines[code]
				line.AccountCode = code
				line.AccountName = subLine.AccountName
				line.AccountType = subLine.AccountType
				line.BalanceCents += subLine.BalanceCents
				lines[code] = line
			}
			net, err := s.scaleCents(netAssetsCents(subLines), sub.MinorityPercentage(), sub.Currency)
			if err != nil {
				return nil, 0, err
			}
			nciCents += net

		case domain.ConsolidationProportional:
			for code, subLine := range subLines {
				share, err := s.scaleCents(subLine.BalanceCents, sub.OwnershipPercentage, sub.Currency)
				if err != nil {
					return nil, 0, err
				}
				line := lines[code]
				line.AccountCode = code
				line.AccountName = subLine.AccountName
				line.AccountType = subLine.AccountType
				line.BalanceCents += share
				lines[code] = line
			}

		case domain.ConsolidationEquity:
			investment, err := s.scaleCents(netAssetsCents(subLines), sub.OwnershipPercentage, sub.Currency)
			if err != nil {
				return nil, 0, err
			}
			line := lines[InvestmentAccountCode]
			line.AccountCode = InvestmentAccountCode
			line.AccountName = "Investment in subsidiaries"
			line.AccountType = domain.AccountTypeAsset
			line.BalanceCents += investment
			lines[InvestmentAccountCode] = line

		default:
			return nil, 0, fmt.Errorf("%w: %q", domain.ErrInvalidConsolidationMethod, sub.ConsolidationMethod)
		}
	}

	return lines, nciCents, nil
}

func (s *ConsolidatedBalanceSheetService) scaleCents(cents int64, pct decimal.Decimal, currency domain.Currency) (int64, error) {
	money := domain.Zero(currency)
	if cents != 0 {
		magnitude, err := domain.NewFromCents(abs64(cents), currency)
		if err != nil {
			return 0, err
		}
		money = magnitude
		if cents < 0 {
			money = money.Negate()
		}
	}

	scaled, err := s.consolidation.ScaleMoney(money, pct)
	if err != nil {
		return 0, err
	}
	return scaled.Cents(), nil
}

// netAssetsCents sums the signed balances of asset and liability lines.
// Liabilities carry negative signed balances, so the sum is net assets.
func netAssetsCents(lines map[string]BalanceSheetLine) int64 {
	var total int64
	for _, line := range lines {
		if line.AccountType == domain.AccountTypeAsset || line.AccountType == domain.AccountTypeLiability {
			total += line.BalanceCents
		}
	}
	return total
}
