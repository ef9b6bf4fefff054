package services

import (
	"time"

	"marketlens/internal/analytics"
	"marketlens/internal/dataset"
)

// DashboardReport is the full presenter payload for one session: every
// KPI, ranking and table the dashboard renders, as plain structured
// data with no rendering concerns.
type DashboardReport struct {
	SessionID   string    `json:"session_id"`
	FileName    string    `json:"file_name"`
	GeneratedAt time.Time `json:"generated_at"`

	KPIs analytics.KPISet `json:"kpis"`

	TopBrandsByRevenue analytics.RankingTable     `json:"top_brands_by_revenue"`
	TopBrandsByUnits   analytics.RankingTable     `json:"top_brands_by_units"`
	BrandMarketShare   analytics.MarketShareTable `json:"brand_market_share"`

	TopProductsByRevenue analytics.RankingTable `json:"top_products_by_revenue"`
	TopProductsByUnits   analytics.RankingTable `json:"top_products_by_units"`
	PreviewByRevenue     []analytics.PreviewRow `json:"preview_by_revenue"`
	PreviewByUnits       []analytics.PreviewRow `json:"preview_by_units"`

	TopBrandChannelRevenue []analytics.ChannelRevenue `json:"top_brand_channel_revenue"`

	ImagesMeanByBrand  []analytics.GroupMean `json:"images_mean_by_brand"`
	RatingsMeanByBrand []analytics.GroupMean `json:"ratings_mean_by_brand"`

	SellerCountryCounts analytics.CountTable `json:"seller_country_counts"`
	CategoryCounts      analytics.CountTable `json:"category_counts"`
	BrandProductCounts  analytics.CountTable `json:"brand_product_counts"`

	Records dataset.Table `json:"records"`
}
