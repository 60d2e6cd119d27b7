package expenses

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

// Handler exposes expense endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleRecord)
	r.Get("/{id}", h.handleGet)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/monthly", h.handleMonthlyTotals)
}

type expenseRequest struct {
	Category string `json:"category" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
	Note     string `json:"note"`
	SpentAt  string `json:"spent_at"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be numeric")
		return
	}
	input := ExpenseInput{
		Category: req.Category,
		Amount:   amount,
		Note:     req.Note,
	}
	if req.SpentAt != "" {
		if input.SpentAt, err = time.Parse("2006-01-02", req.SpentAt); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "spent_at must be yyyy-MM-dd")
			return
		}
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		input.RecordedBy = sess.User()
	}
	exp, err := h.service.Record(r.Context(), input)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": exp.ID})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid expense id")
		return
	}
	exp, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get expense", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":          exp.ID,
		"category":    exp.Category,
		"amount":      exp.Amount.StringFixed(2),
		"note":        exp.Note,
		"spent_at":    exp.SpentAt.Format("2006-01-02"),
		"recorded_by": exp.RecordedBy,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid expense id")
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete expense", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be yyyy-MM-dd")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be yyyy-MM-dd")
			return
		}
	}
	entries, err := h.service.List(r.Context(), from, to)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	type view struct {
		ID       int64  `json:"id"`
		Category string `json:"category"`
		Amount   string `json:"amount"`
		Note     string `json:"note,omitempty"`
		SpentAt  string `json:"spent_at"`
	}
	views := make([]view, 0, len(entries))
	for _, exp := range entries {
		views = append(views, view{
			ID:       exp.ID,
			Category: exp.Category,
			Amount:   exp.Amount.StringFixed(2),
			Note:     exp.Note,
			SpentAt:  exp.SpentAt.Format("2006-01-02"),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": views})
}

func (h *Handler) handleMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "month must be yyyy-MM")
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}
	totals, err := h.service.MonthlyTotals(r.Context(), year, month)
	if err != nil {
		h.logger.Error("monthly expense totals", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"totals": totals})
}
