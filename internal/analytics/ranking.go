package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"marketlens/internal/dataset"
)

func groupOf(rec dataset.ProductRecord, group GroupKey) string {
	if group == GroupASIN {
		return rec.ASIN
	}
	return rec.Brand
}

func metricOf(rec dataset.ProductRecord, metric Metric) decimal.Decimal {
	if metric == MetricUnits {
		return rec.Units
	}
	return rec.Revenue.Decimal
}

// TopByMetric groups the table by group, sums the chosen metric per
// group and returns the n largest groups, descending. Groups that tie
// keep their first-seen order. n <= 0 falls back to DefaultTopN.
func TopByMetric(table dataset.Table, group GroupKey, metric Metric, n int) RankingTable {
	if n <= 0 {
		n = DefaultTopN
	}

	sums := make(map[string]decimal.Decimal, len(table))
	order := make([]string, 0, len(table))
	for _, rec := range table {
		key := groupOf(rec, group)
		if _, seen := sums[key]; !seen {
			order = append(order, key)
			sums[key] = decimal.Zero
		}
		sums[key] = sums[key].Add(metricOf(rec, metric))
	}

	ranking := make(RankingTable, 0, len(order))
	for _, key := range order {
		ranking = append(ranking, RankingEntry{Key: key, Value: sums[key]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Value.GreaterThan(ranking[j].Value)
	})

	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

// MarketShare normalizes a ranking's values to percent of the sum of
// the displayed entries. Shares add up to 100 across exactly the
// entries passed in; a zero sum yields the NaN sentinel per entry.
func MarketShare(ranking RankingTable) MarketShareTable {
	sum := decimal.Zero
	for _, e := range ranking {
		sum = sum.Add(e.Value)
	}
	total := sum.InexactFloat64()

	shares := make(MarketShareTable, 0, len(ranking))
	for _, e := range ranking {
		shares = append(shares, MarketShareEntry{
			Key:          e.Key,
			SharePercent: Ratio(e.Value.InexactFloat64() / total * 100),
		})
	}
	return shares
}

// MarketShareWithMeanPrice extends MarketShare with each group's mean
// price as the secondary metric, computed over the table rows belonging
// to that group.
func MarketShareWithMeanPrice(ranking RankingTable, table dataset.Table, group GroupKey) MarketShareTable {
	sums := make(map[string]decimal.Decimal, len(ranking))
	counts := make(map[string]int64, len(ranking))
	inRanking := make(map[string]struct{}, len(ranking))
	for _, e := range ranking {
		inRanking[e.Key] = struct{}{}
	}

	for _, rec := range table {
		key := groupOf(rec, group)
		if _, ok := inRanking[key]; !ok {
			continue
		}
		sums[key] = sums[key].Add(rec.Price)
		counts[key]++
	}

	shares := MarketShare(ranking)
	for i := range shares {
		if n := counts[shares[i].Key]; n > 0 {
			mean := sums[shares[i].Key].Div(decimal.NewFromInt(n))
			shares[i].MeanPrice = &mean
		}
	}
	return shares
}
