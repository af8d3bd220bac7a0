package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/store"
	"github.com/shopspring/decimal"
)

// StatsStore defines the DB methods the dashboard needs.
// Satisfied by *store.Store; narrow interface for testability.
type StatsStore interface {
	ListOrders(ctx context.Context) ([]store.Order, error)
	ListReviews(ctx context.Context) ([]store.Review, error)
	ListLeaveRequests(ctx context.Context) ([]store.LeaveRequest, error)
}

// DashboardStats are the admin landing-page aggregates, derived on
// demand so they always agree with the orders table.
type DashboardStats struct {
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	ActiveOrders    int             `json:"active_orders"`
	DeliveredOrders int             `json:"delivered_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	Revenue         decimal.Decimal `json:"revenue"`
	PaymentsDue     decimal.Decimal `json:"payments_due"`
	AverageRating   decimal.Decimal `json:"average_rating"`
	ReviewCount     int             `json:"review_count"`
	PendingLeave    int             `json:"pending_leave"`
	RecentOrders    []store.Order   `json:"recent_orders"`
}

type StatsService struct {
	store StatsStore
}

func NewStatsService(st StatsStore) *StatsService {
	return &StatsService{store: st}
}

// ComputeDashboard derives the aggregates from current data. Revenue
// counts Paid orders only; payments due sums every Unpaid order,
// cancelled or not, so the books only close when someone flips the
// label.
func (s *StatsService) ComputeDashboard(ctx context.Context) (DashboardStats, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("loading orders: %w", err)
	}
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("loading reviews: %w", err)
	}
	leave, err := s.store.ListLeaveRequests(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("loading leave requests: %w", err)
	}

	stats := DashboardStats{
		TotalOrders: len(orders),
		Revenue:     decimal.Zero,
		PaymentsDue: decimal.Zero,
	}
	for _, o := range orders {
		switch o.Status {
		case enum.OrderStatusPending, enum.OrderStatusInProgress, enum.OrderStatusOutForDelivery:
			stats.ActiveOrders++
		case enum.OrderStatusDelivered:
			stats.DeliveredOrders++
		case enum.OrderStatusCancelled:
			stats.CancelledOrders++
		}
		if o.Status == enum.OrderStatusPending {
			stats.PendingOrders++
		}
		if o.PaymentStatus == enum.PaymentStatusPaid {
			stats.Revenue = stats.Revenue.Add(o.Total)
		} else {
			stats.PaymentsDue = stats.PaymentsDue.Add(o.Total)
		}
	}

	stats.ReviewCount = len(reviews)
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		stats.AverageRating = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(len(reviews)))).Round(2)
	} else {
		stats.AverageRating = decimal.Zero
	}

	for _, l := range leave {
		if l.Status == enum.LeaveStatusPending {
			stats.PendingLeave++
		}
	}

	recent := make([]store.Order, len(orders))
	copy(recent, orders)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentOrders = recent

	return stats, nil
}
