package inventory

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

// Handler exposes tank endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tanks", h.handleListTanks)
	r.Post("/tanks", h.handleCreateTank)
	r.Put("/tanks/{id}", h.handleUpdateTank)
	r.Get("/tanks/levels", h.handleLevels)
	r.Post("/tanks/{id}/deliveries", h.handleRecordDelivery)
	r.Get("/tanks/{id}/deliveries", h.handleListDeliveries)
	r.Post("/tanks/{id}/dips", h.handleRecordDip)
	r.Get("/tanks/{id}/dips", h.handleListDips)
}

type tankRequest struct {
	Name         string `json:"name" validate:"required"`
	FuelGrade    string `json:"fuel_grade" validate:"required"`
	Capacity     string `json:"capacity_litres" validate:"required"`
	ReorderLevel string `json:"reorder_level" validate:"required"`
}

func (req tankRequest) toInput() (TankInput, error) {
	capacity, err := decimal.NewFromString(req.Capacity)
	if err != nil {
		return TankInput{}, errors.New("capacity_litres must be numeric")
	}
	reorder, err := decimal.NewFromString(req.ReorderLevel)
	if err != nil {
		return TankInput{}, errors.New("reorder_level must be numeric")
	}
	return TankInput{
		Name:           req.Name,
		FuelGrade:      req.FuelGrade,
		CapacityLitres: capacity,
		ReorderLevel:   reorder,
	}, nil
}

type tankView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	FuelGrade    string `json:"fuel_grade"`
	Capacity     string `json:"capacity_litres"`
	ReorderLevel string `json:"reorder_level"`
	BookStock    string `json:"book_stock"`
}

func toTankView(tank *Tank) tankView {
	return tankView{
		ID:           tank.ID,
		Name:         tank.Name,
		FuelGrade:    tank.FuelGrade,
		Capacity:     tank.CapacityLitres.String(),
		ReorderLevel: tank.ReorderLevel.String(),
		BookStock:    tank.BookStock.String(),
	}
}

func (h *Handler) handleListTanks(w http.ResponseWriter, r *http.Request) {
	tanks, err := h.service.ListTanks(r.Context())
	if err != nil {
		h.logger.Error("list tanks", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	views := make([]tankView, 0, len(tanks))
	for i := range tanks {
		views = append(views, toTankView(&tanks[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tanks": views})
}

func (h *Handler) handleCreateTank(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeTank(w, r)
	if !ok {
		return
	}
	tank, err := h.service.CreateTank(r.Context(), input)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, toTankView(tank))
}

func (h *Handler) handleUpdateTank(w http.ResponseWriter, r *http.Request) {
	id, err := tankID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tank id")
		return
	}
	input, ok := h.decodeTank(w, r)
	if !ok {
		return
	}
	tank, err := h.service.UpdateTank(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, toTankView(tank))
}

func (h *Handler) decodeTank(w http.ResponseWriter, r *http.Request) (TankInput, bool) {
	var req tankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return TankInput{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return TankInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return TankInput{}, false
	}
	return input, true
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.Levels(r.Context())
	if err != nil {
		h.logger.Error("tank levels", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"levels": levels})
}

type deliveryRequest struct {
	SupplierID     int64  `json:"supplier_id"`
	Litres         string `json:"litres" validate:"required"`
	UnitCost       string `json:"unit_cost"`
	DeliveredAt    string `json:"delivered_at"`
	SupplierBilled bool   `json:"supplier_billed"`
}

func (h *Handler) handleRecordDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := tankID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tank id")
		return
	}
	var req deliveryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	litres, err := decimal.NewFromString(req.Litres)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "litres must be numeric")
		return
	}
	unitCost := decimal.Zero
	if req.UnitCost != "" {
		if unitCost, err = decimal.NewFromString(req.UnitCost); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unit_cost must be numeric")
			return
		}
	}
	input := DeliveryInput{
		TankID:         id,
		SupplierID:     req.SupplierID,
		Litres:         litres,
		UnitCost:       unitCost,
		SupplierBilled: req.SupplierBilled,
	}
	if req.DeliveredAt != "" {
		if input.DeliveredAt, err = time.Parse(time.RFC3339, req.DeliveredAt); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "delivered_at must be RFC3339")
			return
		}
	}
	delivery, err := h.service.RecordDelivery(r.Context(), input)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":         delivery.ID,
		"total_cost": delivery.TotalCost.StringFixed(2),
		"bill_id":    delivery.BillID,
	})
}

func (h *Handler) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	id, err := tankID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tank id")
		return
	}
	deliveries, err := h.service.ListDeliveries(r.Context(), id)
	if err != nil {
		h.logger.Error("list deliveries", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	type view struct {
		ID          int64  `json:"id"`
		SupplierID  int64  `json:"supplier_id,omitempty"`
		Litres      string `json:"litres"`
		UnitCost    string `json:"unit_cost"`
		TotalCost   string `json:"total_cost"`
		BillID      int64  `json:"bill_id,omitempty"`
		DeliveredAt string `json:"delivered_at"`
	}
	views := make([]view, 0, len(deliveries))
	for _, d := range deliveries {
		views = append(views, view{
			ID:          d.ID,
			SupplierID:  d.SupplierID,
			Litres:      d.Litres.String(),
			UnitCost:    d.UnitCost.String(),
			TotalCost:   d.TotalCost.StringFixed(2),
			BillID:      d.BillID,
			DeliveredAt: d.DeliveredAt.Format(time.RFC3339),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deliveries": views})
}

type dipRequest struct {
	ObservedLitres string `json:"observed_litres" validate:"required"`
	TakenAt        string `json:"taken_at"`
}

func (h *Handler) handleRecordDip(w http.ResponseWriter, r *http.Request) {
	id, err := tankID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tank id")
		return
	}
	var req dipRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	observed, err := decimal.NewFromString(req.ObservedLitres)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "observed_litres must be numeric")
		return
	}
	var takenAt time.Time
	if req.TakenAt != "" {
		if takenAt, err = time.Parse(time.RFC3339, req.TakenAt); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "taken_at must be RFC3339")
			return
		}
	}
	takenBy := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		takenBy = sess.User()
	}
	reading, err := h.service.RecordDipReading(r.Context(), id, observed, takenBy, takenAt)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":       reading.ID,
		"variance": reading.Variance.String(),
	})
}

func (h *Handler) handleListDips(w http.ResponseWriter, r *http.Request) {
	id, err := tankID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tank id")
		return
	}
	readings, err := h.service.ListDipReadings(r.Context(), id)
	if err != nil {
		h.logger.Error("list dip readings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	type view struct {
		ID       int64  `json:"id"`
		Observed string `json:"observed_litres"`
		Book     string `json:"book_litres"`
		Variance string `json:"variance"`
		TakenBy  string `json:"taken_by,omitempty"`
		TakenAt  string `json:"taken_at"`
	}
	views := make([]view, 0, len(readings))
	for _, reading := range readings {
		views = append(views, view{
			ID:       reading.ID,
			Observed: reading.ObservedLitres.String(),
			Book:     reading.BookLitres.String(),
			Variance: reading.Variance.String(),
			TakenBy:  reading.TakenBy,
			TakenAt:  reading.TakenAt.Format(time.RFC3339),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"readings": views})
}

func tankID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
