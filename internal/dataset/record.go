package dataset

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Channel identifies who fulfils an order.
type Channel string

const (
	// ChannelFBA is fulfilled by the marketplace from seller inventory.
	ChannelFBA Channel = "FBA"
	// ChannelMFN is fulfilled by the merchant directly.
	ChannelMFN Channel = "MFN"
	// ChannelAMZ is sold and fulfilled by the marketplace itself.
	ChannelAMZ Channel = "AMZ"
	// ChannelOther covers any value outside the known set.
	ChannelOther Channel = "OTHER"
)

// Channels lists all channel buckets in display order.
var Channels = []Channel{ChannelFBA, ChannelMFN, ChannelAMZ, ChannelOther}

// ParseChannel maps a raw fulfillment cell to a Channel bucket.
func ParseChannel(s string) Channel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FBA":
		return ChannelFBA
	case "MFN", "FBM":
		return ChannelMFN
	case "AMZ":
		return ChannelAMZ
	default:
		return ChannelOther
	}
}

// ProductRecord is one listing row of the export.
//
// Revenue is nullable before cleaning; the Cleaner guarantees it is
// present on every record it returns. SellerCountry and Category are
// empty when the source cell is blank.
type ProductRecord struct {
	ASIN          string              `json:"asin"`
	Title         string              `json:"title"`
	Brand         string              `json:"brand"`
	Price         decimal.Decimal     `json:"price"`
	Revenue       decimal.NullDecimal `json:"revenue"`
	Units         decimal.Decimal     `json:"units"`
	Channel       Channel             `json:"fulfillment"`
	ReviewCount   int                 `json:"review_count"`
	Rating        float64             `json:"rating"`
	ImageCount    int                 `json:"image_count"`
	SellerCountry string              `json:"seller_country,omitempty"`
	Category      string              `json:"category,omitempty"`
}

// Table is an ordered set of product records. Row order matches the
// source file and is significant: ranking ties and deduplication both
// resolve by first occurrence.
type Table []ProductRecord
