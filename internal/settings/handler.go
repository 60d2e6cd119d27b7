package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/forecourt-hq/forecourt/internal/aging"
	"github.com/forecourt-hq/forecourt/internal/platform/httpx"
)

// Handler exposes station settings endpoints.
type Handler struct {
	logger    *slog.Logger
	repo      *Repository
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo, validator: validator.New()}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleGet)
	r.Put("/", h.handleUpdate)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Load(r.Context())
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

type updateRequest struct {
	StationName    string `json:"station_name" validate:"required,min=2"`
	CurrencyCode   string `json:"currency_code" validate:"required,len=3"`
	VATRate        string `json:"vat_rate" validate:"required"`
	LowStockAlerts bool   `json:"low_stock_alerts"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rate, err := decimal.NewFromString(req.VATRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "vat_rate must be a fraction between 0 and 1")
		return
	}
	code := aging.NormalizeCurrency(req.CurrencyCode)
	if code == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "currency_code required")
		return
	}
	s := Settings{
		StationName:    req.StationName,
		CurrencyCode:   code,
		VATRate:        rate,
		LowStockAlerts: req.LowStockAlerts,
	}
	if err := h.repo.Save(r.Context(), s); err != nil {
		h.logger.Error("save settings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}
