package reports

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/forecourt-hq/forecourt/internal/aging"
	"github.com/forecourt-hq/forecourt/internal/platform/httpx"
	"github.com/forecourt-hq/forecourt/internal/shared"
)

// Handler exposes report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	csvPool sync.Pool
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	h := &Handler{logger: logger, service: service}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// MountRoutes registers report endpoints onto the router. The CSV
// export is rate limited per user.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/aging", h.handleAging)
	r.Get("/dashboard", h.handleDashboard)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/aging/export.csv", h.handleAgingCSV)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (h *Handler) parseAgingQuery(r *http.Request) (aging.ReportType, time.Time, error) {
	reportType := aging.ReportType(r.URL.Query().Get("type"))
	if reportType == "" {
		reportType = aging.Receivable
	}
	if !reportType.Valid() {
		return "", time.Time{}, fmt.Errorf("type must be receivable or payable")
	}
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("as_of must be yyyy-MM-dd")
		}
		asOf = parsed
	}
	return reportType, asOf, nil
}

func (h *Handler) handleAging(w http.ResponseWriter, r *http.Request) {
	reportType, asOf, err := h.parseAgingQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	report, err := h.service.Aging(r.Context(), reportType, asOf)
	if err != nil {
		h.logger.Error("aging report", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleAgingCSV(w http.ResponseWriter, r *http.Request) {
	reportType, asOf, err := h.parseAgingQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	report, err := h.service.Aging(r.Context(), reportType, asOf)
	if err != nil {
		h.logger.Error("aging export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)

	if err := WriteAgingCSV(buf, report); err != nil {
		h.logger.Error("write aging csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	filename := fmt.Sprintf("aging-%s-%s.csv", reportType, report.AsOf.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.LoadDashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}
