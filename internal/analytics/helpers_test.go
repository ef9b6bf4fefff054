package analytics

import (
	"github.com/shopspring/decimal"

	"marketlens/internal/dataset"
)

// rec builds a cleaned product record for tests. Revenue "" means the
// pre-clean null case.
func rec(asin, brand, revenue, units, price string, channel dataset.Channel) dataset.ProductRecord {
	r := dataset.ProductRecord{
		ASIN:    asin,
		Title:   "title " + asin,
		Brand:   brand,
		Units:   decimal.RequireFromString(units),
		Price:   decimal.RequireFromString(price),
		Channel: channel,
	}
	if revenue != "" {
		r.Revenue = decimal.NullDecimal{Decimal: decimal.RequireFromString(revenue), Valid: true}
	}
	return r
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
