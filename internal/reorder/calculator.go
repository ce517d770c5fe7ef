package reorder

import (
	"math"

	"stocktrack-backend/internal/models"
)

type Status string

const (
	StatusOut  Status = "OUT"
	StatusLow  Status = "LOW"
	StatusGood Status = "GOOD"
)

// Fields are derived fresh from the product row on every read, never stored.
type Fields struct {
	ReorderPoint     int    `json:"reorder_point"`
	TargetStock      int    `json:"target_stock"`
	SuggestedReorder int    `json:"suggested_reorder"`
	BelowBy          int    `json:"below_by"`
	Status           Status `json:"status"`
}

// sanitize coerces NaN, infinities and negative values to 0 so the
// calculator never raises or yields a negative level. Inputs are validated
// upstream; this only matters for rows written outside the API.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ReorderPoint is ceil(demand*lead + safety), floored at zero.
func ReorderPoint(leadTimeDays int, avgDailyDemand float64, safetyStock int) int {
	lead := sanitize(float64(leadTimeDays))
	demand := sanitize(avgDailyDemand)
	safety := sanitize(float64(safetyStock))

	rop := int(math.Ceil(demand*lead + safety))
	if rop < 0 {
		rop = 0
	}
	return rop
}

// Compute derives the reorder fields for one product.
//
// TargetStock adds lead-time demand on top of the reorder point again: it is
// an order-up-to level above the trigger point, not equal to it.
func Compute(p models.Product) Fields {
	lead := sanitize(float64(p.LeadTimeDays))
	demand := sanitize(p.AvgDailyDemand)
	qty := p.Quantity
	if qty < 0 {
		qty = 0
	}

	rop := ReorderPoint(p.LeadTimeDays, p.AvgDailyDemand, p.SafetyStock)

	target := int(math.Ceil(float64(rop) + demand*lead))
	suggested := target - qty
	if suggested < 0 {
		suggested = 0
	}
	belowBy := rop - qty
	if belowBy < 0 {
		belowBy = 0
	}

	// OUT wins over LOW: a zero-quantity item with rop == 0 is still OUT.
	var status Status
	switch {
	case qty == 0:
		status = StatusOut
	case qty <= rop:
		status = StatusLow
	default:
		status = StatusGood
	}

	return Fields{
		ReorderPoint:     rop,
		TargetStock:      target,
		SuggestedReorder: suggested,
		BelowBy:          belowBy,
		Status:           status,
	}
}
