package ar

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/forecourt-hq/forecourt/internal/platform/httpx"
)

// Handler exposes receivable endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers AR routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.handleListInvoices)
	r.Post("/invoices/{id}/payments", h.handleRegisterPayment)
	r.Get("/outstanding", h.handleOutstanding)
}

type invoiceView struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Customer int64  `json:"customer_id"`
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Status   string `json:"status"`
	IssuedAt string `json:"issued_at"`
	DueAt    string `json:"due_at"`
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		h.logger.Error("list ar invoices", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, invoiceView{
			ID:       inv.ID,
			Number:   inv.Number,
			Customer: inv.CustomerID,
			Currency: inv.Currency,
			Total:    inv.Total.StringFixed(2),
			Status:   string(inv.Status),
			IssuedAt: inv.IssuedAt.Format("2006-01-02"),
			DueAt:    inv.DueAt.Format("2006-01-02"),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": views})
}

type paymentRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
	Note   string `json:"note"`
	PaidAt string `json:"paid_at"`
}

func (h *Handler) handleRegisterPayment(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be numeric")
		return
	}
	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, err = time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "paid_at must be yyyy-MM-dd")
			return
		}
	}
	payment, err := h.service.RegisterPayment(r.Context(), PaymentInput{
		InvoiceID: invoiceID,
		Amount:    amount,
		PaidAt:    paidAt,
		Method:    req.Method,
		Note:      req.Note,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":     payment.ID,
		"amount": payment.Amount.StringFixed(2),
	})
}

func (h *Handler) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Outstanding(r.Context())
	if err != nil {
		h.logger.Error("list ar outstanding", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}
