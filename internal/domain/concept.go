package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
)

// ConceptType selects the commission rule of a Concept.
type ConceptType string

const (
	// ConceptFixed charges a flat amount, 0 < value < 100.
	ConceptFixed ConceptType = "FIXED"
	// ConceptRate charges amount*value, 0 < value < 1.
	ConceptRate ConceptType = "RATE"
)

var (
	fixedUpperBound = decimal.NewFromInt(100)
	rateUpperBound  = decimal.NewFromInt(1)
)

// Valid reports whether t is a known concept type.
func (t ConceptType) Valid() bool {
	return t == ConceptFixed || t == ConceptRate
}

// ValidateValue checks v against the type-specific range.
func (t ConceptType) ValidateValue(v decimal.Decimal) error {
	switch t {
	case ConceptFixed:
		if v.IsPositive() && v.LessThan(fixedUpperBound) {
			return nil
		}
		return apperr.Validationf("value", "fixed concept value must satisfy 0 < value < 100, got %s", v)
	case ConceptRate:
		if v.IsPositive() && v.LessThan(rateUpperBound) {
			return nil
		}
		return apperr.Validationf("value", "rate concept value must satisfy 0 < value < 1, got %s", v)
	default:
		return apperr.Validationf("type", "unknown concept type %q", string(t))
	}
}

// ComputeCommission applies the type rule to amount with the concept's
// value, half-up rounded to 2 decimals. FIXED ignores amount.
func (t ConceptType) ComputeCommission(amount, value decimal.Decimal) decimal.Decimal {
	switch t {
	case ConceptFixed:
		return value.Round(2)
	case ConceptRate:
		return amount.Mul(value).Round(2)
	default:
		return decimal.Zero
	}
}

// Concept is a billable commission definition.
type Concept struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Type      ConceptType     `db:"type" json:"type"`
	Value     decimal.Decimal `db:"value" json:"value"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
