package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/http/requestutil"
	"github.com/preston-bernstein/fixture-data-service/internal/logging"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

// Refresher forces a window refetch for one date.
type Refresher interface {
	Refresh(ctx context.Context, date string) error
}

// AdminHandler exposes admin-only endpoints.
type AdminHandler struct {
	refresher Refresher
	token     string
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewAdminHandler constructs an AdminHandler. It returns nil when no token is configured.
func NewAdminHandler(refresher Refresher, token string, loc *time.Location, logger *slog.Logger) *AdminHandler {
	if token == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{
		refresher: refresher,
		token:     token,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// RefreshCache serves POST /admin/cache/refresh?date=. The date defaults to today.
func (h *AdminHandler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return
	}
	if h.refresher == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "refresh not configured", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = timeutil.DateIn(h.now(), h.loc)
	}
	if err := h.refresher.Refresh(r.Context(), date); err != nil {
		if errors.Is(err, providers.ErrInvalidDateFormat) {
			WriteError(w, r, http.StatusBadRequest, "invalid date format (expected YYYY-MM-DD)", logger)
			return
		}
		logging.Warn(logger, "admin refresh failed", slog.String(logging.FieldDate, date), slog.Any("err", err))
		WriteError(w, r, http.StatusBadGateway, "refresh failed", logger)
		return
	}

	logging.Info(logger, "admin refresh complete", slog.String(logging.FieldDate, date))
	writeJSON(w, http.StatusOK, map[string]string{"date": date, "status": "ok"}, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	got, ok := requestutil.BearerToken(r)
	if !ok || h.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}
