package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/fixture-data-service/internal/app/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/logging"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/scheduler"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

// FixtureService is the read side the handlers need.
type FixtureService interface {
	ByDate(ctx context.Context, date string, q fixtures.Query) (fixtures.DateResult, error)
	ByLeague(ctx context.Context, leagueID int64, date string) (fixtures.DateResult, error)
	Live(ctx context.Context) fixtures.LiveResult
	ByID(ctx context.Context, id int64) (fixtures.FixtureResult, error)
}

// Handler wires HTTP routes to the fixture service.
type Handler struct {
	svc      FixtureService
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
	statusFn func() scheduler.Status
}

// NewHandler constructs a Handler. statusFn may be nil, in which case /ready always succeeds.
func NewHandler(svc FixtureService, loc *time.Location, logger *slog.Logger, statusFn func() scheduler.Status) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		svc:      svc,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic, based on the reconciler's recent ticks.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	WriteError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// FixturesByDate serves GET /fixtures/date/{date}.
func (h *Handler) FixturesByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	q, err := h.parseQuery(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	res, err := h.svc.ByDate(r.Context(), date, q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "served fixtures",
		logging.FieldDate, date,
		"source", string(res.Source),
		logging.FieldCount, len(res.Fixtures),
	)
	writeJSON(w, http.StatusOK, res, h.logger)
}

// LiveFixtures serves GET /fixtures/live.
func (h *Handler) LiveFixtures(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Live(r.Context())
	writeJSON(w, http.StatusOK, res, h.logger)
}

// FixturesByLeague serves GET /fixtures/league/{leagueID}?date=.
func (h *Handler) FixturesByLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := strconv.ParseInt(chi.URLParam(r, "leagueID"), 10, 64)
	if err != nil || leagueID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid league id", h.logger)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = timeutil.DateIn(h.now(), h.loc)
	}
	res, err := h.svc.ByLeague(r.Context(), leagueID, date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res, h.logger)
}

// FixtureByID serves GET /fixtures/{id}.
func (h *Handler) FixtureByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid fixture id", h.logger)
		return
	}
	res, err := h.svc.ByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res, h.logger)
}

func (h *Handler) parseQuery(r *http.Request) (fixtures.Query, error) {
	values := r.URL.Query()
	var q fixtures.Query
	var err error
	if q.All, err = boolParam(values.Get("all"), "all"); err != nil {
		return q, err
	}
	if q.Classify, err = boolParam(values.Get("classify"), "classify"); err != nil {
		return q, err
	}
	if q.PopularOnly, err = boolParam(values.Get("popular"), "popular"); err != nil {
		return q, err
	}
	loc, ok := timeutil.ResolveLocation(values.Get("tz"), h.loc)
	if !ok {
		return q, errors.New("invalid timezone")
	}
	q.Location = loc
	if ref := strings.TrimSpace(values.Get("ref")); ref != "" {
		if _, err := timeutil.ParseDate(ref); err != nil {
			return q, errors.New("invalid ref date (expected YYYY-MM-DD)")
		}
		q.Reference = ref
	}
	return q, nil
}

func boolParam(raw, name string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Newf("invalid %s flag", name)
	}
	return v, nil
}

// writeServiceError maps the two caller-facing errors and hides everything else.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, providers.ErrInvalidDateFormat):
		WriteError(w, r, http.StatusBadRequest, "invalid date format (expected YYYY-MM-DD)", h.logger)
	case errors.Is(err, providers.ErrFixtureNotFound):
		WriteError(w, r, http.StatusNotFound, "fixture not found", h.logger)
	default:
		logging.Error(loggerFromContext(r, h.logger), "request failed", err)
		WriteError(w, r, http.StatusInternalServerError, "internal error", h.logger)
	}
}
