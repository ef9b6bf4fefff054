package analytics

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"marketlens/internal/dataset"
)

// GroupKey selects the grouping column for rankings and breakdowns.
type GroupKey string

const (
	GroupBrand GroupKey = "brand"
	GroupASIN  GroupKey = "asin"
)

// Metric selects the ranking metric.
type Metric string

const (
	MetricRevenue Metric = "revenue"
	MetricUnits   Metric = "units"
)

// DefaultTopN is the ranking length used by the dashboard.
const DefaultTopN = 10

// Ratio is a derived ratio or percentage. Undefined arithmetic (zero
// denominators) yields NaN or ±Inf, which marshal to JSON null so the
// sentinel survives the wire without breaking the encoder.
type Ratio float64

// MarshalJSON maps NaN and ±Inf to null.
func (v Ratio) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON reads null back as NaN.
func (v *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Ratio(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Ratio(f)
	return nil
}

// IsDefined reports whether the ratio carries a real value.
func (v Ratio) IsDefined() bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ChannelKPI is the revenue attributed to one fulfillment channel and
// its share of total revenue.
type ChannelKPI struct {
	Revenue      decimal.Decimal `json:"revenue"`
	SharePercent Ratio           `json:"share_percent"`
}

// KPISet holds the headline scalars of one dataset. Computed once per
// loaded dataset and read-only afterwards.
type KPISet struct {
	TotalRevenue        decimal.Decimal                 `json:"total_revenue"`
	TotalUnits          decimal.Decimal                 `json:"total_units"`
	AverageSellingPrice decimal.Decimal                 `json:"average_selling_price"`
	Channels            map[dataset.Channel]ChannelKPI  `json:"channels"`
	ProductCount        int                             `json:"product_count"`
	BrandCount          int                             `json:"brand_count"`
}

// RankingEntry is one (group, summed metric) pair of a ranking.
type RankingEntry struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// RankingTable is an ordered top-N ranking, descending by value, ties
// broken by first occurrence in the source table.
type RankingTable []RankingEntry

// Keys returns the group keys in ranking order.
func (t RankingTable) Keys() []string {
	keys := make([]string, len(t))
	for i, e := range t {
		keys[i] = e.Key
	}
	return keys
}

// MarketShareEntry is one group's share of the displayed ranking.
type MarketShareEntry struct {
	Key          string           `json:"key"`
	SharePercent Ratio            `json:"share_percent"`
	MeanPrice    *decimal.Decimal `json:"mean_price,omitempty"`
}

// MarketShareTable normalizes a ranking to percent of the sum of the
// displayed entries; shares add up to 100 across exactly the top-N
// shown, not the whole dataset.
type MarketShareTable []MarketShareEntry

// CountEntry is one bucket of a value-count distribution. Missing
// marks the bucket that aggregates blank cells.
type CountEntry struct {
	Value   string `json:"value"`
	Missing bool   `json:"missing,omitempty"`
	Count   int    `json:"count"`
}

// CountTable is a value-count distribution, descending by count, ties
// broken by first-seen order.
type CountTable []CountEntry

// GroupMean is one group's arithmetic mean of a numeric column.
type GroupMean struct {
	Key  string `json:"key"`
	Mean Ratio  `json:"mean"`
}

// EngagementRow pairs a listing's revenue and review count with its
// revenue-per-review ratio. Rows with zero reviews keep their sentinel
// RPR; they are never dropped.
type EngagementRow struct {
	ASIN        string          `json:"asin"`
	Title       string          `json:"title"`
	Brand       string          `json:"brand"`
	Revenue     decimal.Decimal `json:"revenue"`
	ReviewCount int             `json:"review_count"`
	RPR         Ratio           `json:"rpr"`
}

// PreviewRow is a listing projected for the sorted preview table.
type PreviewRow struct {
	ASIN  string          `json:"asin"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// ChannelRevenue is the revenue of one (group, channel) pair, feeding
// the grouped-bar channel breakdown of the top brands.
type ChannelRevenue struct {
	Key     string          `json:"key"`
	Channel dataset.Channel `json:"channel"`
	Revenue decimal.Decimal `json:"revenue"`
}
