package reorder

import (
	"sort"

	"stocktrack-backend/internal/models"
)

// Row pairs a catalog product with its derived fields.
type Row struct {
	Product models.Product
	Fields
}

type Filter string

const (
	FilterAll           Filter = "all"
	FilterNeedsOrdering Filter = "needs_ordering"
	FilterAttention     Filter = "attention"
)

type Sort string

const (
	SortSuggestedAsc  Sort = "suggested_asc"
	SortSuggestedDesc Sort = "suggested_desc"
	SortSKU           Sort = "sku"
	SortQuantityAsc   Sort = "quantity_asc"
	SortDeficitDesc   Sort = "deficit_desc"
	SortROPDesc       Sort = "rop_desc"
)

func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case FilterAll, FilterNeedsOrdering, FilterAttention:
		return Filter(s), true
	case "":
		return FilterAll, true
	}
	return "", false
}

func ParseSort(s string) (Sort, bool) {
	switch Sort(s) {
	case SortSuggestedAsc, SortSuggestedDesc, SortSKU, SortQuantityAsc, SortDeficitDesc, SortROPDesc:
		return Sort(s), true
	case "":
		return SortSuggestedDesc, true
	}
	return "", false
}

// Project computes derived fields for every product, keeps the rows the
// filter admits and orders them. Runs against the caller's current snapshot
// of the catalog; results are never cached across writes.
func Project(products []models.Product, filter Filter, order Sort) []Row {
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		row := Row{Product: p, Fields: Compute(p)}
		switch filter {
		case FilterNeedsOrdering:
			if row.SuggestedReorder <= 0 {
				continue
			}
		case FilterAttention:
			if row.Status == StatusGood {
				continue
			}
		}
		rows = append(rows, row)
	}

	less := lessFunc(order)
	sort.SliceStable(rows, func(i, j int) bool {
		if less(rows[i], rows[j]) {
			return true
		}
		if less(rows[j], rows[i]) {
			return false
		}
		// SKU tiebreak keeps the ordering deterministic.
		return rows[i].Product.SKU < rows[j].Product.SKU
	})
	return rows
}

func lessFunc(order Sort) func(a, b Row) bool {
	switch order {
	case SortSuggestedAsc:
		return func(a, b Row) bool { return a.SuggestedReorder < b.SuggestedReorder }
	case SortSKU:
		return func(a, b Row) bool { return a.Product.SKU < b.Product.SKU }
	case SortQuantityAsc:
		return func(a, b Row) bool { return a.Product.Quantity < b.Product.Quantity }
	case SortDeficitDesc:
		return func(a, b Row) bool { return a.BelowBy > b.BelowBy }
	case SortROPDesc:
		return func(a, b Row) bool { return a.ReorderPoint > b.ReorderPoint }
	default: // SortSuggestedDesc
		return func(a, b Row) bool { return a.SuggestedReorder > b.SuggestedReorder }
	}
}
