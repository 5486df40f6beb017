package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ConsolidationMethod determines how a subsidiary rolls up into its parent.
type ConsolidationMethod string

const (
	ConsolidationFull         ConsolidationMethod = "Full"
	ConsolidationProportional ConsolidationMethod = "Proportional"
	ConsolidationEquity       ConsolidationMethod = "Equity"
)

var validConsolidationMethods = map[ConsolidationMethod]bool{
	ConsolidationFull:         true,
	ConsolidationProportional: true,
	ConsolidationEquity:       true,
}

// IsValid checks if the method is a known consolidation method.
func (m ConsolidationMethod) IsValid() bool {
	return validConsolidationMethods[m]
}

// Entity is a legal entity in the consolidation hierarchy. Immutable
// after creation.
type Entity struct {
	ID                  string
	TenantID            string
	Name                string
	ParentEntityID      string
	OwnershipPercentage decimal.Decimal
	ConsolidationMethod ConsolidationMethod
	Currency            Currency
	CreatedAt           time.Time
}

var hundred = decimal.NewFromInt(100)

// NewEntity validates and builds an entity. Ownership is a percentage in
// [0, 100].
func NewEntity(id, tenantID, name, parentEntityID string, ownership decimal.Decimal, method ConsolidationMethod, currency Currency, now time.Time) (*Entity, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("entity name is required")
	}
	if ownership.IsNegative() || ownership.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOwnershipPercentage, ownership)
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidConsolidationMethod, method)
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}

	return &Entity{
		ID:                  id,
		TenantID:            tenantID,
		Name:                strings.TrimSpace(name),
		ParentEntityID:      parentEntityID,
		OwnershipPercentage: ownership,
		ConsolidationMethod: method,
		Currency:            currency,
		CreatedAt:           now,
	}, nil
}

// MinorityPercentage returns 100 - ownership, the non-controlling share.
func (e *Entity) MinorityPercentage() decimal.Decimal {
	return hundred.Sub(e.OwnershipPercentage)
}
