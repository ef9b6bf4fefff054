package analytics

import (
	"sort"

	"marketlens/internal/dataset"
)

// CategoricalColumn selects the column for value counts.
type CategoricalColumn string

const (
	ColSellerCountry CategoricalColumn = "seller_country"
	ColCategory      CategoricalColumn = "category"
	ColBrand         CategoricalColumn = "brand"
)

// NumericColumn selects the column for per-group means.
type NumericColumn string

const (
	ColPrice  NumericColumn = "price"
	ColRating NumericColumn = "rating"
	ColImages NumericColumn = "images"
)

func categoricalOf(rec dataset.ProductRecord, col CategoricalColumn) string {
	switch col {
	case ColSellerCountry:
		return rec.SellerCountry
	case ColCategory:
		return rec.Category
	default:
		return rec.Brand
	}
}

func numericOf(rec dataset.ProductRecord, col NumericColumn) float64 {
	switch col {
	case ColRating:
		return rec.Rating
	case ColImages:
		return float64(rec.ImageCount)
	default:
		return rec.Price.InexactFloat64()
	}
}

// ValueCounts tallies the distinct values of a categorical column,
// descending by count, ties broken by first-seen order. When
// includeMissing is set, blank cells aggregate into an explicit
// missing bucket; otherwise they are skipped.
func ValueCounts(table dataset.Table, col CategoricalColumn, includeMissing bool) CountTable {
	type bucket struct {
		entry     CountEntry
		firstSeen int
	}
	buckets := make(map[string]*bucket, len(table))
	var missing *bucket

	for i, rec := range table {
		v := categoricalOf(rec, col)
		if v == "" {
			if !includeMissing {
				continue
			}
			if missing == nil {
				missing = &bucket{entry: CountEntry{Missing: true}, firstSeen: i}
			}
			missing.entry.Count++
			continue
		}
		b, seen := buckets[v]
		if !seen {
			b = &bucket{entry: CountEntry{Value: v}, firstSeen: i}
			buckets[v] = b
		}
		b.entry.Count++
	}

	all := make([]*bucket, 0, len(buckets)+1)
	for _, b := range buckets {
		all = append(all, b)
	}
	if missing != nil {
		all = append(all, missing)
	}
	// Descending by count; ties keep first-seen order.
	sort.Slice(all, func(i, j int) bool {
		if all[i].entry.Count != all[j].entry.Count {
			return all[i].entry.Count > all[j].entry.Count
		}
		return all[i].firstSeen < all[j].firstSeen
	})

	out := make(CountTable, 0, len(all))
	for _, b := range all {
		out = append(out, b.entry)
	}
	return out
}

// MeanByGroup computes the arithmetic mean of a numeric column within
// each group, descending by mean, ties broken by first-seen order. A
// group only exists when at least one row contributes, so every mean
// is defined.
func MeanByGroup(table dataset.Table, group GroupKey, col NumericColumn) []GroupMean {
	sums := make(map[string]float64, len(table))
	counts := make(map[string]int, len(table))
	order := make([]string, 0, len(table))

	for _, rec := range table {
		key := groupOf(rec, group)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		sums[key] += numericOf(rec, col)
		counts[key]++
	}

	means := make([]GroupMean, 0, len(order))
	for _, key := range order {
		means = append(means, GroupMean{Key: key, Mean: Ratio(sums[key] / float64(counts[key]))})
	}
	sort.SliceStable(means, func(i, j int) bool { return means[i].Mean > means[j].Mean })
	return means
}

// DerivedRatio divides num by den. IEEE semantics supply the sentinel
// for zero denominators: x/0 is ±Inf and 0/0 is NaN, both of which
// marshal to JSON null. Never an error.
func DerivedRatio(num, den float64) Ratio {
	return Ratio(num / den)
}

// FilterBrands restricts the table to rows whose brand is in the
// selection. An empty selection yields an empty table, not an error.
func FilterBrands(table dataset.Table, brands []string) dataset.Table {
	selected := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		selected[b] = struct{}{}
	}

	out := make(dataset.Table, 0, len(table))
	for _, rec := range table {
		if _, ok := selected[rec.Brand]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// EngagementTable builds the revenue / review count / RPR view for the
// selected brands, preserving source order. Rows with zero reviews keep
// their sentinel RPR.
func EngagementTable(table dataset.Table, brands []string) []EngagementRow {
	filtered := FilterBrands(table, brands)
	rows := make([]EngagementRow, 0, len(filtered))
	for _, rec := range filtered {
		rows = append(rows, EngagementRow{
			ASIN:        rec.ASIN,
			Title:       rec.Title,
			Brand:       rec.Brand,
			Revenue:     rec.Revenue.Decimal,
			ReviewCount: rec.ReviewCount,
			RPR:         DerivedRatio(rec.Revenue.Decimal.InexactFloat64(), float64(rec.ReviewCount)),
		})
	}
	return rows
}

// ChannelBreakdown sums revenue per (group, channel) pair for the given
// group keys, in key order then fixed channel order. Pairs with no rows
// are omitted.
func ChannelBreakdown(table dataset.Table, group GroupKey, keys []string) []ChannelRevenue {
	type pair struct {
		key     string
		channel dataset.Channel
	}
	sums := make(map[pair]*ChannelRevenue)

	selected := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		selected[k] = struct{}{}
	}

	for _, rec := range table {
		key := groupOf(rec, group)
		if _, ok := selected[key]; !ok {
			continue
		}
		p := pair{key: key, channel: rec.Channel}
		entry, ok := sums[p]
		if !ok {
			entry = &ChannelRevenue{Key: key, Channel: rec.Channel}
			sums[p] = entry
		}
		entry.Revenue = entry.Revenue.Add(rec.Revenue.Decimal)
	}

	out := make([]ChannelRevenue, 0, len(sums))
	for _, key := range keys {
		for _, ch := range dataset.Channels {
			if entry, ok := sums[pair{key: key, channel: ch}]; ok {
				out = append(out, *entry)
			}
		}
	}
	return out
}

// PreviewTable sorts the table descending by the chosen metric (stable)
// and projects it to (ASIN, title, price) for display.
func PreviewTable(table dataset.Table, metric Metric) []PreviewRow {
	sorted := make(dataset.Table, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metricOf(sorted[i], metric).GreaterThan(metricOf(sorted[j], metric))
	})

	rows := make([]PreviewRow, 0, len(sorted))
	for _, rec := range sorted {
		rows = append(rows, PreviewRow{ASIN: rec.ASIN, Title: rec.Title, Price: rec.Price})
	}
	return rows
}
