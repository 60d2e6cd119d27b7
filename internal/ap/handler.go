package ap

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

// Handler exposes payable endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers AP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bills", h.handleListBills)
	r.Post("/bills", h.handleCreateBill)
	r.Post("/bills/{id}/payments", h.handleRegisterPayment)
	r.Get("/outstanding", h.handleOutstanding)
}

type billView struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Supplier int64  `json:"supplier_id"`
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Status   string `json:"status"`
	IssuedAt string `json:"issued_at"`
	DueAt    string `json:"due_at"`
}

func (h *Handler) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListBills(r.Context())
	if err != nil {
		h.logger.Error("list ap bills", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	views := make([]billView, 0, len(bills))
	for _, bill := range bills {
		views = append(views, billView{
			ID:       bill.ID,
			Number:   bill.Number,
			Supplier: bill.SupplierID,
			Currency: bill.Currency,
			Total:    bill.Total.StringFixed(2),
			Status:   string(bill.Status),
			IssuedAt: bill.IssuedAt.Format("2006-01-02"),
			DueAt:    bill.DueAt.Format("2006-01-02"),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bills": views})
}

type billRequest struct {
	SupplierID int64  `json:"supplier_id"`
	Number     string `json:"number"`
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	IssuedAt   string `json:"issued_at"`
	DueAt      string `json:"due_at"`
}

func (h *Handler) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "total must be numeric")
		return
	}
	input := BillInput{
		SupplierID: req.SupplierID,
		Number:     req.Number,
		Currency:   req.Currency,
		Total:      total,
	}
	if req.IssuedAt != "" {
		if input.IssuedAt, err = time.Parse("2006-01-02", req.IssuedAt); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "issued_at must be yyyy-MM-dd")
			return
		}
	}
	if req.DueAt != "" {
		if input.DueAt, err = time.Parse("2006-01-02", req.DueAt); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "due_at must be yyyy-MM-dd")
			return
		}
	}
	bill, err := h.service.CreateBill(r.Context(), input)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": bill.ID, "number": bill.Number})
}

type paymentRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
	Note   string `json:"note"`
	PaidAt string `json:"paid_at"`
}

func (h *Handler) handleRegisterPayment(w http.ResponseWriter, r *http.Request) {
	billID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bill id")
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
		if paidAt, err = time.Parse("2006-01-02", req.PaidAt); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "paid_at must be yyyy-MM-dd")
			return
		}
	}
	payment, err := h.service.RegisterPayment(r.Context(), PaymentInput{
		BillID: billID,
		Amount: amount,
		PaidAt: paidAt,
		Method: req.Method,
		Note:   req.Note,
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
		h.logger.Error("list ap outstanding", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}
