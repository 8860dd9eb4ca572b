// Package presence verifies that a claimant reported a position inside a
// deal's registered hotspot.
package presence

import (
	"strings"

	"github.com/shopspring/decimal"

	"nilgate/internal/geo"
	dErrors "nilgate/pkg/domain-errors"
)

// Hotspot is the registered location of a deal. It is immutable once
// registered.
type Hotspot struct {
	DealID       string
	Name         string
	Center       geo.Coordinate
	RadiusMeters float64
	Payout       decimal.Decimal
}

// NewHotspot validates and builds a hotspot.
func NewHotspot(dealID, name string, center geo.Coordinate, radiusMeters float64, payout decimal.Decimal) (Hotspot, error) {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return Hotspot{}, dErrors.New(dErrors.CodeValidation, "deal id is required")
	}
	if err := center.Validate(); err != nil {
		return Hotspot{}, err
	}
	if !(radiusMeters > 0) {
		return Hotspot{}, dErrors.New(dErrors.CodeValidation, "hotspot radius must be positive")
	}
	if payout.IsNegative() {
		return Hotspot{}, dErrors.New(dErrors.CodeValidation, "hotspot payout must not be negative")
	}
	return Hotspot{
		DealID:       dealID,
		Name:         strings.TrimSpace(name),
		Center:       center,
		RadiusMeters: radiusMeters,
		Payout:       payout,
	}, nil
}
