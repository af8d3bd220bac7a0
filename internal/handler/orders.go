package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/service"
	"github.com/coral-stay/api/internal/status"
	"github.com/coral-stay/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderCoordinator defines what order handlers need from the order
// service. Satisfied by *service.OrderService; narrow interface for
// testability.
type OrderCoordinator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (store.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrders(ctx context.Context) ([]store.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]store.Order, error)
	ActiveQueue() []store.Order
	UpdateStatus(ctx context.Context, id uuid.UUID, role, newStatus string) (store.Order, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, actor uuid.UUID, role, newPayment string) (store.Order, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orders OrderCoordinator
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderCoordinator) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Mounted behind the authentication middleware; per-role rules are
// enforced inside the handlers because most routes are shared.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/queue", h.Queue)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/payment", h.UpdatePayment)
}

// --- Request types ---

type createOrderRequest struct {
	Items []string `json:"items"` // menu item IDs
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// --- Handlers ---

// Create places a new order for the authenticated customer.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role != enum.RoleCustomer {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only customers place orders"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, raw := range req.Items {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
			return
		}
		ids = append(ids, id)
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerID:   claims.UserID,
		CustomerName: claims.Name,
		MenuItemIDs:  ids,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMenuItemMissing):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu item not found"})
		case errors.Is(err, service.ErrItemUnavailable):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu item is not available"})
		case errors.Is(err, service.ErrEmptyItems):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		default:
			log.Printf("ERROR: create order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List returns orders scoped by role: customers see their own, staff
// and admins see everything. An optional ?status= query narrows the
// result to one lifecycle status.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && !isValidOrderStatus(statusFilter) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	var orders []store.Order
	var err error
	if claims.Role == enum.RoleCustomer {
		orders, err = h.orders.ListOrdersByCustomer(r.Context(), claims.UserID)
	} else {
		orders, err = h.orders.ListOrders(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if statusFilter != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == statusFilter {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	writeJSON(w, http.StatusOK, orders)
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusInProgress,
		enum.OrderStatusOutForDelivery, enum.OrderStatusDelivered,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

// Queue returns the live kitchen queue. The websocket feed pushes the
// same snapshot; this is the poll fallback.
func (h *OrderHandler) Queue(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role != enum.RoleStaff && claims.Role != enum.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		return
	}

	writeJSON(w, http.StatusOK, h.orders.ActiveQueue())
}

// Get returns a single order. Customers may only see their own.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Don't leak existence of other customers' orders.
	if claims.Role == enum.RoleCustomer && order.CustomerID != claims.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus moves an order through its lifecycle. The change is
// applied optimistically: 202 means the new state is live in the queue
// and the write is in flight; a failed write rolls the queue back.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role != enum.RoleStaff && claims.Role != enum.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, claims.Role, req.Status)
	if err != nil {
		var ruleErr *status.RuleError
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.As(err, &ruleErr):
			writeJSON(w, http.StatusConflict, map[string]string{"error": ruleErr.Reason})
		default:
			log.Printf("ERROR: update order status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, order)
}

// UpdatePayment flips an order's payment label, optimistically like
// UpdateStatus. Customers settle their own orders; admins may correct
// in either direction.
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role == enum.RoleStaff {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.orders.UpdatePayment(r.Context(), id, claims.UserID, claims.Role, req.PaymentStatus)
	if err != nil {
		var ruleErr *status.RuleError
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrNotOrderOwner):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "order belongs to another customer"})
		case errors.As(err, &ruleErr):
			writeJSON(w, http.StatusConflict, map[string]string{"error": ruleErr.Reason})
		default:
			log.Printf("ERROR: update order payment: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, order)
}
