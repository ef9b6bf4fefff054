package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"marketlens/internal/analytics"
	apierrors "marketlens/internal/errors"
	"marketlens/internal/middleware"
	"marketlens/internal/services"
)

// SessionHandler exposes the analysis sessions over HTTP. It owns no
// computation: uploads and queries are delegated to the session
// service and the results rendered as plain JSON for the presenter.
type SessionHandler struct {
	service      SessionServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	maxUpload    int64
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(service SessionServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUpload int64) *SessionHandler {
	return &SessionHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "session_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		maxUpload:    maxUpload,
	}
}

// Routes returns the session routes.
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateSession)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Put("/file", h.ReplaceFile)
		r.Delete("/", h.DeleteSession)
		r.Get("/report", h.GetReport)
		r.Get("/kpis", h.GetKPIs)
		r.Get("/rankings", h.GetRankings)
		r.Get("/market-share", h.GetMarketShare)
		r.Get("/counts", h.GetCounts)
		r.Get("/engagement", h.GetEngagement)
		r.Get("/records", h.GetPreview)
	})

	return r
}

// SessionCtx middleware validates the session id parameter.
func (h *SessionHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Session id is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rankingParams are the user-driven ranking selectors.
type rankingParams struct {
	Group  string `validate:"oneof=brand asin"`
	Metric string `validate:"oneof=revenue units"`
	Limit  int    `validate:"min=0,max=100"`
}

// CreateSession handles POST /api/sessions: a multipart upload of one
// listing export. The whole pipeline runs synchronously; the response
// carries the session and its KPIs.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	fileName, content, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	session, err := h.service.CreateSession(r.Context(), fileName, content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	kpis, err := h.service.KPIs(r.Context(), session.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "session created",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("session_id", session.ID),
		slog.String("file_name", fileName))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"session": session,
		"kpis":    kpis,
	})
}

// ReplaceFile handles PUT /api/sessions/{id}/file: a new upload into an
// existing session. Identical bytes are served from the session cache.
func (h *SessionHandler) ReplaceFile(w http.ResponseWriter, r *http.Request) {
	fileName, content, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	session, err := h.service.ReplaceFile(r.Context(), chi.URLParam(r, "id"), fileName, content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{"session": session})
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// GetReport handles GET /api/sessions/{id}/report.
func (h *SessionHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// GetKPIs handles GET /api/sessions/{id}/kpis.
func (h *SessionHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.KPIs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, kpis)
}

// GetRankings handles GET /api/sessions/{id}/rankings with group,
// metric and limit selectors.
func (h *SessionHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	params := rankingParams{
		Group:  queryDefault(r, "group", "brand"),
		Metric: queryDefault(r, "metric", "revenue"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "Limit must be an integer"))
			return
		}
		params.Limit = n
	}
	if err := h.validate.Struct(params); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("query", err.Error()))
		return
	}

	ranking, err := h.service.Rankings(r.Context(), chi.URLParam(r, "id"),
		analytics.GroupKey(params.Group), analytics.Metric(params.Metric), params.Limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, ranking)
}

// GetMarketShare handles GET /api/sessions/{id}/market-share.
func (h *SessionHandler) GetMarketShare(w http.ResponseWriter, r *http.Request) {
	metric := queryDefault(r, "metric", "revenue")
	if err := h.validate.Var(metric, "oneof=revenue units"); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", "Metric must be revenue or units"))
		return
	}

	shares, err := h.service.MarketShare(r.Context(), chi.URLParam(r, "id"), analytics.Metric(metric))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, shares)
}

// GetCounts handles GET /api/sessions/{id}/counts for one categorical
// column.
func (h *SessionHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	column := queryDefault(r, "column", "brand")
	if err := h.validate.Var(column, "oneof=seller_country category brand"); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("column", "Column must be seller_country, category or brand"))
		return
	}

	counts, err := h.service.Counts(r.Context(), chi.URLParam(r, "id"), analytics.CategoricalColumn(column))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, counts)
}

// GetEngagement handles GET /api/sessions/{id}/engagement with the
// brand multi-select. No brands selected means an empty table.
func (h *SessionHandler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	var brands []string
	for _, raw := range r.URL.Query()["brands"] {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brands = append(brands, b)
			}
		}
	}

	rows, err := h.service.Engagement(r.Context(), chi.URLParam(r, "id"), brands)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, rows)
}

// GetPreview handles GET /api/sessions/{id}/records, the preview table
// sorted by the chosen metric.
func (h *SessionHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	metric := queryDefault(r, "sort", "revenue")
	if err := h.validate.Var(metric, "oneof=revenue units"); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sort", "Sort must be revenue or units"))
		return
	}

	rows, err := h.service.Preview(r.Context(), chi.URLParam(r, "id"), analytics.Metric(metric))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, rows)
}

// readUpload extracts the uploaded file from a multipart request.
func (h *SessionHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Request must be multipart form data with a file field"))
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Missing file upload"))
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_REQUEST", "Could not read uploaded file", err.Error()))
		return "", nil, false
	}

	return header.Filename, content, true
}

// handleServiceError maps service errors to API responses.
func (h *SessionHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrNoFileLoaded):
		h.errorHandler.HandleError(w, r, apierrors.ErrSessionNotFound)
	default:
		// AppError taxonomy (unreadable file, empty dataset) maps in
		// the error handler itself.
		h.errorHandler.HandleError(w, r, err)
	}
}

func queryDefault(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
