package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/service"
	"github.com/coral-stay/api/internal/status"
	"github.com/coral-stay/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// LeaveDecider defines what leave handlers need from the leave
// service. Satisfied by *service.LeaveService.
type LeaveDecider interface {
	Create(ctx context.Context, req service.CreateLeaveRequest) (store.LeaveRequest, error)
	Decide(ctx context.Context, id uuid.UUID, decision string) (store.LeaveRequest, error)
	List(ctx context.Context) ([]store.LeaveRequest, error)
	ListByStaff(ctx context.Context, staffID uuid.UUID) ([]store.LeaveRequest, error)
}

// LeaveHandler handles leave request endpoints.
type LeaveHandler struct {
	leave LeaveDecider
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(leave LeaveDecider) *LeaveHandler {
	return &LeaveHandler{leave: leave}
}

// RegisterRoutes registers leave endpoints on the given Chi router.
func (h *LeaveHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Patch("/{id}", h.Decide)
}

// --- Request types ---

type createLeaveRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`
}

type decideLeaveRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Create files a leave request for the authenticated staff member.
func (h *LeaveHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role != enum.RoleStaff {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only staff file leave requests"})
		return
	}

	var req createLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
		return
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date"})
		return
	}

	request, err := h.leave.Create(r.Context(), service.CreateLeaveRequest{
		StaffID:   claims.UserID,
		StaffName: claims.Name,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		if errors.Is(err, service.ErrLeaveDateOrder) || errors.Is(err, service.ErrLeaveReason) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create leave request: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

// List returns leave requests: staff see their own, admins see all.
func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var requests []store.LeaveRequest
	var err error
	switch claims.Role {
	case enum.RoleAdmin:
		requests, err = h.leave.List(r.Context())
	case enum.RoleStaff:
		requests, err = h.leave.ListByStaff(r.Context(), claims.UserID)
	default:
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		return
	}
	if err != nil {
		log.Printf("ERROR: list leave requests: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

// Decide approves or denies a pending request. Admin only. The
// decision is applied optimistically, so this returns 202 with the
// decided request before the write lands.
func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role != enum.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid leave request ID"})
		return
	}

	var req decideLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	request, err := h.leave.Decide(r.Context(), id, req.Status)
	if err != nil {
		var ruleErr *status.RuleError
		switch {
		case errors.Is(err, service.ErrLeaveNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "leave request not found"})
		case errors.Is(err, service.ErrLeaveDecided):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "leave request already decided"})
		case errors.As(err, &ruleErr):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": ruleErr.Reason})
		default:
			log.Printf("ERROR: decide leave request: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, request)
}
