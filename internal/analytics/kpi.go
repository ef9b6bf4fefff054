package analytics

import (
	"github.com/shopspring/decimal"

	"marketlens/internal/dataset"
)

// ComputeKPIs derives the headline scalars from the cleaned table:
// revenue and unit totals, average selling price, the per-channel
// revenue split with its share of total revenue, and the distinct
// product and brand counts.
//
// With zero total revenue the channel shares are undefined and come
// back as the NaN sentinel, never an error.
func ComputeKPIs(table dataset.Table) KPISet {
	kpis := KPISet{
		TotalRevenue: decimal.Zero,
		TotalUnits:   decimal.Zero,
		Channels:     make(map[dataset.Channel]ChannelKPI, len(dataset.Channels)),
	}

	channelRevenue := make(map[dataset.Channel]decimal.Decimal, len(dataset.Channels))
	for _, ch := range dataset.Channels {
		channelRevenue[ch] = decimal.Zero
	}

	asins := make(map[string]struct{}, len(table))
	brands := make(map[string]struct{})

	priceSum := decimal.Zero
	for _, rec := range table {
		if rec.Revenue.Valid {
			kpis.TotalRevenue = kpis.TotalRevenue.Add(rec.Revenue.Decimal)
			channelRevenue[rec.Channel] = channelRevenue[rec.Channel].Add(rec.Revenue.Decimal)
		}
		kpis.TotalUnits = kpis.TotalUnits.Add(rec.Units)
		priceSum = priceSum.Add(rec.Price)

		asins[rec.ASIN] = struct{}{}
		brands[rec.Brand] = struct{}{}
	}

	if len(table) > 0 {
		kpis.AverageSellingPrice = priceSum.Div(decimal.NewFromInt(int64(len(table))))
	} else {
		kpis.AverageSellingPrice = decimal.Zero
	}

	total := kpis.TotalRevenue.InexactFloat64()
	for _, ch := range dataset.Channels {
		rev := channelRevenue[ch]
		// 0/0 is NaN, x/0 is +Inf; both are the defined sentinel.
		share := Ratio(rev.InexactFloat64() / total * 100)
		kpis.Channels[ch] = ChannelKPI{Revenue: rev, SharePercent: share}
	}

	kpis.ProductCount = len(asins)
	kpis.BrandCount = len(brands)

	return kpis
}
