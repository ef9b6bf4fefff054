package http

import (
	"context"

	"marketlens/internal/analytics"
	"marketlens/internal/services"
)

// SessionServiceInterface defines what the session handler needs from
// the session service. Kept narrow so handler tests can stub it.
type SessionServiceInterface interface {
	CreateSession(ctx context.Context, fileName string, content []byte) (*services.Session, error)
	ReplaceFile(ctx context.Context, id, fileName string, content []byte) (*services.Session, error)
	DeleteSession(ctx context.Context, id string) error
	KPIs(ctx context.Context, id string) (analytics.KPISet, error)
	Rankings(ctx context.Context, id string, group analytics.GroupKey, metric analytics.Metric, n int) (analytics.RankingTable, error)
	MarketShare(ctx context.Context, id string, metric analytics.Metric) (analytics.MarketShareTable, error)
	Counts(ctx context.Context, id string, col analytics.CategoricalColumn) (analytics.CountTable, error)
	Engagement(ctx context.Context, id string, brands []string) ([]analytics.EngagementRow, error)
	Preview(ctx context.Context, id string, metric analytics.Metric) ([]analytics.PreviewRow, error)
	Report(ctx context.Context, id string) (*services.DashboardReport, error)
}
