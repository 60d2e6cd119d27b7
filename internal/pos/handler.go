package pos

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/forecourt-hq/forecourt/internal/platform/httpx"
	"github.com/forecourt-hq/forecourt/internal/shared"
)

// Handler exposes till endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers POS routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.handleCreateSale)
	r.Get("/sales", h.handleListSales)
	r.Get("/sales/summary", h.handleDaySummary)
	r.Get("/sales/{id}", h.handleGetSale)
}

type lineRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=FUEL SHOP"`
	TankID      int64  `json:"tank_id"`
	Description string `json:"description" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	UnitPrice   string `json:"unit_price" validate:"required"`
}

type saleRequest struct {
	CustomerID int64         `json:"customer_id"`
	Tender     string        `json:"tender" validate:"required,oneof=CASH CREDIT"`
	SoldAt     string        `json:"sold_at"`
	Lines      []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

type lineView struct {
	Kind        string `json:"kind"`
	TankID      int64  `json:"tank_id,omitempty"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type saleView struct {
	ID            int64      `json:"id"`
	ReceiptNumber string     `json:"receipt_number"`
	CustomerID    int64      `json:"customer_id,omitempty"`
	Tender        string     `json:"tender"`
	Currency      string     `json:"currency"`
	Subtotal      string     `json:"subtotal"`
	Tax           string     `json:"tax"`
	Total         string     `json:"total"`
	SoldAt        string     `json:"sold_at"`
	Lines         []lineView `json:"lines,omitempty"`
}

func toSaleView(sale *Sale) saleView {
	view := saleView{
		ID:            sale.ID,
		ReceiptNumber: sale.ReceiptNumber,
		CustomerID:    sale.CustomerID,
		Tender:        string(sale.Tender),
		Currency:      sale.Currency,
		Subtotal:      sale.Subtotal.StringFixed(2),
		Tax:           sale.Tax.StringFixed(2),
		Total:         sale.Total.StringFixed(2),
		SoldAt:        sale.SoldAt.Format(time.RFC3339),
	}
	for _, line := range sale.Lines {
		view.Lines = append(view.Lines, lineView{
			Kind:        string(line.Kind),
			TankID:      line.TankID,
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   line.UnitPrice.String(),
			LineTotal:   line.LineTotal.StringFixed(2),
		})
	}
	return view
}

func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := SaleInput{
		CashierID:  currentCashier(r),
		CustomerID: req.CustomerID,
		Tender:     Tender(req.Tender),
	}
	if req.SoldAt != "" {
		soldAt, err := time.Parse(time.RFC3339, req.SoldAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sold_at must be RFC3339")
			return
		}
		input.SoldAt = soldAt
	}
	for i, line := range req.Lines {
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "line "+strconv.Itoa(i+1)+": quantity must be numeric")
			return
		}
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "line "+strconv.Itoa(i+1)+": unit_price must be numeric")
			return
		}
		input.Lines = append(input.Lines, LineInput{
			Kind:        LineKind(line.Kind),
			TankID:      line.TankID,
			Description: line.Description,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}
	sale, err := h.service.CreateSale(r.Context(), input)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, toSaleView(sale))
}

func (h *Handler) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toSaleView(sale))
}

func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r, time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "day must be yyyy-MM-dd")
		return
	}
	sales, err := h.service.ListByDay(r.Context(), day)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	views := make([]saleView, 0, len(sales))
	for i := range sales {
		views = append(views, toSaleView(&sales[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": views})
}

func (h *Handler) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r, time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "day must be yyyy-MM-dd")
		return
	}
	summary, err := h.service.SummarizeDay(r.Context(), day)
	if err != nil {
		h.logger.Error("summarize sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func parseDay(r *http.Request, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}

func currentCashier(r *http.Request) string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return ""
	}
	return sess.User()
}
