package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/handler"
	"github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// --- Mock StatsProvider ---

type mockStatsProvider struct {
	computeFn func(ctx context.Context) (service.DashboardStats, error)
}

func (m *mockStatsProvider) ComputeDashboard(ctx context.Context) (service.DashboardStats, error) {
	if m.computeFn != nil {
		return m.computeFn(ctx)
	}
	return service.DashboardStats{}, nil
}

// --- Test helpers ---

func setupDashboardRouter(stats *mockStatsProvider) *chi.Mux {
	h := handler.NewDashboardHandler(stats)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.RoleAdmin))
		h.RegisterRoutes(r)
	})
	return r
}

// --- Tests ---

func TestDashboardGet_HappyPath(t *testing.T) {
	stats := &mockStatsProvider{
		computeFn: func(ctx context.Context) (service.DashboardStats, error) {
			return service.DashboardStats{
				TotalOrders:     12,
				PendingOrders:   2,
				ActiveOrders:    3,
				DeliveredOrders: 7,
				CancelledOrders: 2,
				Revenue:         decimal.RequireFromString("78.25"),
				PaymentsDue:     decimal.RequireFromString("12.00"),
				AverageRating:   decimal.RequireFromString("4.33"),
				ReviewCount:     6,
				PendingLeave:    1,
			}, nil
		},
	}

	router := setupDashboardRouter(stats)
	rr := doAuthRequest(t, router, "GET", "/dashboard", nil, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["total_orders"] != float64(12) {
		t.Errorf("total_orders: got %v, want 12", resp["total_orders"])
	}
	if resp["revenue"] != "78.25" {
		t.Errorf("revenue: got %v, want 78.25", resp["revenue"])
	}
	// decimal renders without trailing zeros.
	if resp["payments_due"] != "12" {
		t.Errorf("payments_due: got %v, want 12", resp["payments_due"])
	}
	if resp["pending_orders"] != float64(2) {
		t.Errorf("pending_orders: got %v, want 2", resp["pending_orders"])
	}
	if resp["average_rating"] != "4.33" {
		t.Errorf("average_rating: got %v, want 4.33", resp["average_rating"])
	}
	if resp["pending_leave"] != float64(1) {
		t.Errorf("pending_leave: got %v, want 1", resp["pending_leave"])
	}
}

func TestDashboardGet_StaffForbidden(t *testing.T) {
	router := setupDashboardRouter(&mockStatsProvider{})
	rr := doAuthRequest(t, router, "GET", "/dashboard", nil, staffClaims())

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusForbidden, rr.Body.String())
	}
}

func TestDashboardGet_CustomerForbidden(t *testing.T) {
	router := setupDashboardRouter(&mockStatsProvider{})
	rr := doAuthRequest(t, router, "GET", "/dashboard", nil, customerClaims())

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusForbidden, rr.Body.String())
	}
}

func TestDashboardGet_StoreError(t *testing.T) {
	stats := &mockStatsProvider{
		computeFn: func(ctx context.Context) (service.DashboardStats, error) {
			return service.DashboardStats{}, errors.New("connection refused")
		},
	}

	router := setupDashboardRouter(stats)
	rr := doAuthRequest(t, router, "GET", "/dashboard", nil, adminClaims())

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusInternalServerError, rr.Body.String())
	}
}
