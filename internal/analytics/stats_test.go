package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketlens/internal/dataset"
)

func withCountry(r dataset.ProductRecord, country string) dataset.ProductRecord {
	r.SellerCountry = country
	return r
}

func TestValueCounts(t *testing.T) {
	table := dataset.Table{
		withCountry(rec("A1", "X", "1", "1", "1", dataset.ChannelFBA), "DE"),
		withCountry(rec("A2", "X", "1", "1", "1", dataset.ChannelFBA), "CN"),
		withCountry(rec("A3", "Y", "1", "1", "1", dataset.ChannelFBA), "DE"),
		withCountry(rec("A4", "Y", "1", "1", "1", dataset.ChannelFBA), ""),
		withCountry(rec("A5", "Z", "1", "1", "1", dataset.ChannelFBA), ""),
		withCountry(rec("A6", "Z", "1", "1", "1", dataset.ChannelFBA), ""),
	}

	t.Run("with missing bucket", func(t *testing.T) {
		counts := ValueCounts(table, ColSellerCountry, true)
		require.Len(t, counts, 3)

		assert.True(t, counts[0].Missing)
		assert.Equal(t, 3, counts[0].Count)
		assert.Equal(t, "DE", counts[1].Value)
		assert.Equal(t, 2, counts[1].Count)
		assert.Equal(t, "CN", counts[2].Value)
		assert.Equal(t, 1, counts[2].Count)
	})

	t.Run("without missing bucket", func(t *testing.T) {
		counts := ValueCounts(table, ColSellerCountry, false)
		require.Len(t, counts, 2)
		assert.Equal(t, "DE", counts[0].Value)
		assert.Equal(t, "CN", counts[1].Value)
		for _, c := range counts {
			assert.False(t, c.Missing)
		}
	})

	t.Run("brand counts", func(t *testing.T) {
		counts := ValueCounts(table, ColBrand, false)
		require.Len(t, counts, 3)
		// All tied at 2; first-seen order breaks the tie.
		assert.Equal(t, "X", counts[0].Value)
		assert.Equal(t, "Y", counts[1].Value)
		assert.Equal(t, "Z", counts[2].Value)
	})
}

func TestMeanByGroup(t *testing.T) {
	table := dataset.Table{
		rec("A1", "X", "1", "1", "10", dataset.ChannelFBA),
		rec("A2", "X", "1", "1", "20", dataset.ChannelFBA),
		rec("A3", "Y", "1", "1", "40", dataset.ChannelFBA),
	}

	means := MeanByGroup(table, GroupBrand, ColPrice)
	require.Len(t, means, 2)
	assert.Equal(t, "Y", means[0].Key)
	assert.InDelta(t, 40.0, float64(means[0].Mean), 1e-9)
	assert.Equal(t, "X", means[1].Key)
	assert.InDelta(t, 15.0, float64(means[1].Mean), 1e-9)

	for _, m := range means {
		assert.True(t, m.Mean.IsDefined(), "means are always defined, group %s", m.Key)
	}
}

func TestMeanByGroup_ImagesAndRatings(t *testing.T) {
	r1 := rec("A1", "X", "1", "1", "1", dataset.ChannelFBA)
	r1.ImageCount = 6
	r1.Rating = 4.0
	r2 := rec("A2", "X", "1", "1", "1", dataset.ChannelFBA)
	r2.ImageCount = 8
	r2.Rating = 5.0
	table := dataset.Table{r1, r2}

	images := MeanByGroup(table, GroupBrand, ColImages)
	require.Len(t, images, 1)
	assert.InDelta(t, 7.0, float64(images[0].Mean), 1e-9)

	ratings := MeanByGroup(table, GroupBrand, ColRating)
	require.Len(t, ratings, 1)
	assert.InDelta(t, 4.5, float64(ratings[0].Mean), 1e-9)
}

func TestDerivedRatio(t *testing.T) {
	tests := []struct {
		name  string
		num   float64
		den   float64
		check func(t *testing.T, got Ratio)
	}{
		{
			name: "defined",
			num:  150, den: 30,
			check: func(t *testing.T, got Ratio) { assert.InDelta(t, 5.0, float64(got), 1e-9) },
		},
		{
			name: "positive over zero",
			num:  150, den: 0,
			check: func(t *testing.T, got Ratio) { assert.True(t, math.IsInf(float64(got), 1)) },
		},
		{
			name: "zero over zero",
			num:  0, den: 0,
			check: func(t *testing.T, got Ratio) { assert.True(t, math.IsNaN(float64(got))) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DerivedRatio(tt.num, tt.den))
		})
	}
}

func TestFilterBrands(t *testing.T) {
	table := dataset.Table{
		rec("A1", "X", "1", "1", "1", dataset.ChannelFBA),
		rec("A2", "Y", "1", "1", "1", dataset.ChannelFBA),
		rec("A3", "X", "1", "1", "1", dataset.ChannelFBA),
	}

	filtered := FilterBrands(table, []string{"X"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "A1", filtered[0].ASIN)
	assert.Equal(t, "A3", filtered[1].ASIN)

	assert.Empty(t, FilterBrands(table, nil), "empty selection filters everything out")
	assert.Empty(t, FilterBrands(table, []string{"nope"}))
}

func TestEngagementTable(t *testing.T) {
	r := rec("A2", "X", "500", "1", "1", dataset.ChannelFBA)
	r.ReviewCount = 0 // zero reviews keeps the row with a sentinel RPR
	table := dataset.Table{
		func() dataset.ProductRecord {
			r := rec("A1", "X", "150", "1", "1", dataset.ChannelFBA)
			r.ReviewCount = 30
			return r
		}(),
		r,
		rec("A3", "Y", "999", "1", "1", dataset.ChannelFBA),
	}

	rows := EngagementTable(table, []string{"X"})
	require.Len(t, rows, 2)

	assert.Equal(t, "A1", rows[0].ASIN)
	assert.InDelta(t, 5.0, float64(rows[0].RPR), 1e-9)

	assert.Equal(t, "A2", rows[1].ASIN)
	assert.True(t, math.IsInf(float64(rows[1].RPR), 1), "zero reviews yields +Inf, the row stays")
}

func TestChannelBreakdown(t *testing.T) {
	table := dataset.Table{
		rec("A1", "X", "100", "1", "1", dataset.ChannelFBA),
		rec("A2", "X", "50", "1", "1", dataset.ChannelFBA),
		rec("A3", "X", "25", "1", "1", dataset.ChannelMFN),
		rec("A4", "Y", "200", "1", "1", dataset.ChannelAMZ),
		rec("A5", "Z", "999", "1", "1", dataset.ChannelFBA), // not selected
	}

	out := ChannelBreakdown(table, GroupBrand, []string{"Y", "X"})
	require.Len(t, out, 3)

	// Key order then fixed channel order; empty pairs omitted.
	assert.Equal(t, "Y", out[0].Key)
	assert.Equal(t, dataset.ChannelAMZ, out[0].Channel)
	assert.True(t, dec("200").Equal(out[0].Revenue))

	assert.Equal(t, "X", out[1].Key)
	assert.Equal(t, dataset.ChannelFBA, out[1].Channel)
	assert.True(t, dec("150").Equal(out[1].Revenue))

	assert.Equal(t, "X", out[2].Key)
	assert.Equal(t, dataset.ChannelMFN, out[2].Channel)
	assert.True(t, dec("25").Equal(out[2].Revenue))
}

func TestPreviewTable(t *testing.T) {
	table := dataset.Table{
		rec("A1", "X", "100", "5", "10", dataset.ChannelFBA),
		rec("A2", "Y", "300", "1", "20", dataset.ChannelFBA),
		rec("A3", "Z", "200", "9", "30", dataset.ChannelFBA),
	}

	byRevenue := PreviewTable(table, MetricRevenue)
	require.Len(t, byRevenue, 3)
	assert.Equal(t, "A2", byRevenue[0].ASIN)
	assert.Equal(t, "title A2", byRevenue[0].Title)
	assert.True(t, dec("20").Equal(byRevenue[0].Price))
	assert.Equal(t, "A3", byRevenue[1].ASIN)
	assert.Equal(t, "A1", byRevenue[2].ASIN)

	byUnits := PreviewTable(table, MetricUnits)
	assert.Equal(t, "A3", byUnits[0].ASIN)
	assert.Equal(t, "A1", byUnits[1].ASIN)
	assert.Equal(t, "A2", byUnits[2].ASIN)

	// Input order untouched.
	assert.Equal(t, "A1", table[0].ASIN)
}
