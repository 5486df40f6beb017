package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ConsolidationService performs the per-subsidiary rollup arithmetic for
// the three consolidation methods. All operations require the parent and
// subsidiary amounts to share a currency.
type ConsolidationService struct{}

// NewConsolidationService creates a new ConsolidationService.
func NewConsolidationService() *ConsolidationService {
	return &ConsolidationService{}
}

// FullConsolidationResult carries the fully-consolidated amount and the
// minority's claim on it.
type FullConsolidationResult struct {
	Consolidated domain.Money
	NCI          domain.Money
}

// ConsolidateFull rolls the whole subsidiary amount into the parent and
// computes the non-controlling interest as the unowned share of the
// subsidiary amount.
func (s *ConsolidationService) ConsolidateFull(parent, subsidiary domain.Money, ownershipPct decimal.Decimal) (FullConsolidationResult, error) {
	if err := validateOwnership(ownershipPct); err != nil {
		return FullConsolidationResult{}, err
	}

	consolidated, err := parent.Add(subsidiary)
	if err != nil {
		return FullConsolidationResult{}, err
	}

	nci, err := s.ScaleMoney(subsidiary, hundred.Sub(ownershipPct))
	if err != nil {
		return FullConsolidationResult{}, err
	}

	return FullConsolidationResult{Consolidated: consolidated, NCI: nci}, nil
}

// ConsolidateProportional rolls only the owned share of the subsidiary
// amount into the parent, line by line.
func (s *ConsolidationService) ConsolidateProportional(parent, subsidiary domain.Money, ownershipPct decimal.Decimal) (domain.Money, error) {
	if err := validateOwnership(ownershipPct); err != nil {
		return domain.Money{}, err
	}

	share, err := s.ScaleMoney(subsidiary, ownershipPct)
	if err != nil {
		return domain.Money{}, err
	}

	return parent.Add(share)
}

// ConsolidateEquity applies the owned share of the subsidiary as a single
// net investment effect. The per-amount arithmetic matches the
// proportional method; presenting it as one investment line instead of a
// line-item rollup is the caller's responsibility.
func (s *ConsolidationService) ConsolidateEquity(parent, subsidiary domain.Money, ownershipPct decimal.Decimal) (domain.Money, error) {
	return s.ConsolidateProportional(parent, subsidiary, ownershipPct)
}

// ScaleMoney multiplies an amount by a percentage and rounds half away
// from zero to the nearest minor unit. The sign survives through
// Negate+Abs; the constructor is never handed a negative magnitude.
func (s *ConsolidationService) ScaleMoney(m domain.Money, pct decimal.Decimal) (domain.Money, error) {
	negative := m.IsNegative()
	abs := m.Abs()

	scaledCents := decimal.NewFromInt(abs.Cents()).
		Mul(pct).
		DivRound(hundred, 0).
		IntPart()

	scaled, err := domain.NewFromCents(scaledCents, m.Currency())
	if err != nil {
		return domain.Money{}, err
	}
	if negative {
		scaled = scaled.Negate()
	}

	return scaled, nil
}

func validateOwnership(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidOwnershipPercentage, pct)
	}
	return nil
}
