package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketlens/internal/analytics"
	"marketlens/internal/dataset"
)

// Session owns the data of one analysis: the memoized load cache, the
// raw and cleaned tables and the KPI set. A new upload into the same
// session fully replaces the dataset and triggers full recomputation;
// uploading identical bytes is served from the session's parse cache.
type Session struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`

	cache   *dataset.Cache
	raw     dataset.Table
	cleaned dataset.Table
	kpis    analytics.KPISet
}

// snapshot copies the session's current state. Tables are handed off
// immutably (loadInto swaps in fresh slices, never edits in place), so
// sharing the slice headers is safe; readers holding a snapshot never
// observe a concurrent upload mid-swap. Must be called under the
// service lock.
func (s *Session) snapshot() *Session {
	return &Session{
		ID:        s.ID,
		FileName:  s.FileName,
		CreatedAt: s.CreatedAt,
		cache:     s.cache,
		raw:       s.raw,
		cleaned:   s.cleaned,
		kpis:      s.kpis,
	}
}

// SessionService runs the analysis pipeline and keeps each session's
// derived entities. All derived tables are computed views over the
// session's cleaned table; nothing is mutated after handoff.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	loader  *dataset.Loader
	cleaner *dataset.Cleaner
	logger  *slog.Logger
	topN    int
}

// NewSessionService creates the session service. topN bounds every
// ranking the service produces; values <= 0 fall back to the default.
func NewSessionService(logger *slog.Logger, topN int) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	if topN <= 0 {
		topN = analytics.DefaultTopN
	}
	return &SessionService{
		sessions: make(map[string]*Session),
		loader:   dataset.NewLoader(logger),
		cleaner:  dataset.NewCleaner(logger),
		logger:   logger.With(slog.String("component", "session_service")),
		topN:     topN,
	}
}

// CreateSession starts a new analysis session from an uploaded file and
// runs the full pipeline: load (memoized per session), clean, KPIs.
func (s *SessionService) CreateSession(ctx context.Context, fileName string, content []byte) (*Session, error) {
	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		cache:     dataset.NewCache(s.loader, s.logger),
	}

	if err := s.loadInto(ctx, session, fileName, content); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	snap := session.snapshot()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session created",
		slog.String("session_id", snap.ID),
		slog.String("file_name", fileName),
		slog.Int("cleaned_rows", len(snap.cleaned)))

	return snap, nil
}

// ReplaceFile loads a new upload into an existing session. Identical
// content is served from the session cache without re-parsing; new
// content replaces the dataset and recomputes everything.
func (s *SessionService) ReplaceFile(ctx context.Context, id, fileName string, content []byte) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := s.loadInto(ctx, session, fileName, content); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session dataset replaced",
		slog.String("session_id", id),
		slog.String("file_name", fileName))

	// Evaluated before the deferred unlock runs.
	return session.snapshot(), nil
}

// loadInto runs load + clean + KPI computation for one upload.
func (s *SessionService) loadInto(ctx context.Context, session *Session, fileName string, content []byte) error {
	raw, err := session.cache.Load(ctx, content)
	if err != nil {
		return err
	}
	cleaned, err := s.cleaner.Clean(ctx, raw)
	if err != nil {
		return err
	}

	session.FileName = fileName
	session.raw = raw
	session.cleaned = cleaned
	// KPIs are computed from the cleaned table. The source dashboard
	// used the raw table here, which let duplicate and revenue-less
	// rows inflate the headline totals while rankings excluded them.
	session.kpis = analytics.ComputeKPIs(cleaned)
	return nil
}

// DeleteSession discards a session and its cache.
func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.InfoContext(ctx, "session deleted", slog.String("session_id", id))
	return nil
}

// session fetches a snapshot of a session under the read lock. Every
// accessor works on the snapshot, so a concurrent ReplaceFile (which
// mutates the live session under the write lock) can never race a
// read of the cleaned table or the KPI set.
func (s *SessionService) session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.cleaned == nil {
		return nil, ErrNoFileLoaded
	}
	return session.snapshot(), nil
}

// KPIs returns the session's KPI set.
func (s *SessionService) KPIs(ctx context.Context, id string) (analytics.KPISet, error) {
	session, err := s.session(id)
	if err != nil {
		return analytics.KPISet{}, err
	}
	return session.kpis, nil
}

// Rankings returns the top-N groups by the chosen metric.
func (s *SessionService) Rankings(ctx context.Context, id string, group analytics.GroupKey, metric analytics.Metric, n int) (analytics.RankingTable, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > s.topN {
		n = s.topN
	}
	return analytics.TopByMetric(session.cleaned, group, metric, n), nil
}

// MarketShare returns the top-brand market shares for the chosen
// metric, with the mean price per brand as secondary metric.
func (s *SessionService) MarketShare(ctx context.Context, id string, metric analytics.Metric) (analytics.MarketShareTable, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	ranking := analytics.TopByMetric(session.cleaned, analytics.GroupBrand, metric, s.topN)
	return analytics.MarketShareWithMeanPrice(ranking, session.cleaned, analytics.GroupBrand), nil
}

// Counts returns the value-count distribution for a categorical
// column. Seller country and category keep an explicit missing bucket;
// brand counts skip blanks, matching the dashboard's count charts.
func (s *SessionService) Counts(ctx context.Context, id string, col analytics.CategoricalColumn) (analytics.CountTable, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	includeMissing := col != analytics.ColBrand
	return analytics.ValueCounts(session.cleaned, col, includeMissing), nil
}

// Engagement returns the revenue / reviews / RPR table restricted to
// the selected brands. An empty selection yields an empty table.
func (s *SessionService) Engagement(ctx context.Context, id string, brands []string) ([]analytics.EngagementRow, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return analytics.EngagementTable(session.cleaned, brands), nil
}

// Preview returns the cleaned rows sorted by the chosen metric,
// projected for the preview table.
func (s *SessionService) Preview(ctx context.Context, id string, metric analytics.Metric) ([]analytics.PreviewRow, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return analytics.PreviewTable(session.cleaned, metric), nil
}

// Report assembles the full dashboard payload for a session.
func (s *SessionService) Report(ctx context.Context, id string) (*DashboardReport, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	cleaned := session.cleaned
	topBrandsByRevenue := analytics.TopByMetric(cleaned, analytics.GroupBrand, analytics.MetricRevenue, s.topN)

	report := &DashboardReport{
		SessionID:   session.ID,
		FileName:    session.FileName,
		GeneratedAt: time.Now().UTC(),
		KPIs:        session.kpis,

		TopBrandsByRevenue: topBrandsByRevenue,
		TopBrandsByUnits:   analytics.TopByMetric(cleaned, analytics.GroupBrand, analytics.MetricUnits, s.topN),
		BrandMarketShare:   analytics.MarketShareWithMeanPrice(topBrandsByRevenue, cleaned, analytics.GroupBrand),

		TopProductsByRevenue: analytics.TopByMetric(cleaned, analytics.GroupASIN, analytics.MetricRevenue, s.topN),
		TopProductsByUnits:   analytics.TopByMetric(cleaned, analytics.GroupASIN, analytics.MetricUnits, s.topN),
		PreviewByRevenue:     analytics.PreviewTable(cleaned, analytics.MetricRevenue),
		PreviewByUnits:       analytics.PreviewTable(cleaned, analytics.MetricUnits),

		TopBrandChannelRevenue: analytics.ChannelBreakdown(cleaned, analytics.GroupBrand, topBrandsByRevenue.Keys()),

		ImagesMeanByBrand:  analytics.MeanByGroup(cleaned, analytics.GroupBrand, analytics.ColImages),
		RatingsMeanByBrand: analytics.MeanByGroup(cleaned, analytics.GroupBrand, analytics.ColRating),

		SellerCountryCounts: analytics.ValueCounts(cleaned, analytics.ColSellerCountry, true),
		CategoryCounts:      analytics.ValueCounts(cleaned, analytics.ColCategory, true),
		BrandProductCounts:  analytics.ValueCounts(cleaned, analytics.ColBrand, false),

		Records: cleaned,
	}

	s.logger.InfoContext(ctx, "dashboard report assembled",
		slog.String("session_id", id),
		slog.Int("rows", len(cleaned)))

	return report, nil
}
