package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/session"
	"github.com/coral-stay/api/internal/status"
	"github.com/coral-stay/api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems      = errors.New("items are required")
	ErrOrderNotFound   = errors.New("order not found")
	ErrMenuItemMissing = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrNotOrderOwner   = errors.New("order belongs to another customer")
)

// OrderStore defines the DB methods the order service needs.
// Satisfied by *store.Store; narrow interface for testability.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrders(ctx context.Context) ([]store.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]store.Order, error)
	ListActiveOrders(ctx context.Context) ([]store.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (store.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) (store.Order, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (store.MenuItem, error)
}

// QueuePublisher pushes a fresh kitchen-queue snapshot to whoever is
// watching. Satisfied by the websocket hub adapter.
type QueuePublisher interface {
	PublishQueue(orders []store.Order)
}

// OrderService owns the live order view. Reads of active orders come
// from the session cache; status and payment changes are applied
// optimistically through the coordinator and persisted in the
// background. Every settled mutation, committed or rolled back,
// publishes a new queue snapshot.
type OrderService struct {
	store     OrderStore
	cache     *session.Cache[store.Order]
	coord     *session.Coordinator[store.Order]
	publisher QueuePublisher
}

func NewOrderService(st OrderStore, publisher QueuePublisher, commitTimeout time.Duration) *OrderService {
	s := &OrderService{
		store:     st,
		publisher: publisher,
	}
	s.cache = session.NewCache[store.Order]()
	s.coord = session.NewCoordinator(s.cache, (*orderNotifier)(s), commitTimeout)
	return s
}

// orderNotifier adapts OrderService to session.Notifier without
// exposing the callbacks on the service's public API.
type orderNotifier OrderService

func (n *orderNotifier) MutationCommitted(id uuid.UUID, o store.Order) {
	// Terminal orders leave the live view once their write has landed.
	// A later mutation (say an admin payment fix) re-caches on demand.
	if status.OrderTerminal(o.Status) {
		n.cache.Delete(id)
	}
	(*OrderService)(n).publishSnapshot()
}

func (n *orderNotifier) MutationFailed(id uuid.UUID, _ store.Order, _ error) {
	// The coordinator already restored the snapshot; tell watchers the
	// optimistic change they saw has been rolled back.
	(*OrderService)(n).publishSnapshot()
}

// LoadActive rehydrates the session cache from the database. Called at
// startup before the server accepts traffic.
func (s *OrderService) LoadActive(ctx context.Context) error {
	orders, err := s.store.ListActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("loading active orders: %w", err)
	}
	items := make(map[uuid.UUID]store.Order, len(orders))
	for _, o := range orders {
		items[o.ID] = o
	}
	s.cache.Reset(items)
	return nil
}

type CreateOrderRequest struct {
	CustomerID   uuid.UUID
	CustomerName string
	MenuItemIDs  []uuid.UUID
}

// CreateOrder prices the requested dishes from the menu, writes the
// order in its initial state and puts it on the kitchen queue.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (store.Order, error) {
	if len(req.MenuItemIDs) == 0 {
		return store.Order{}, ErrEmptyItems
	}

	total := decimal.Zero
	names := make([]string, 0, len(req.MenuItemIDs))
	for _, id := range req.MenuItemIDs {
		item, err := s.store.GetMenuItem(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.Order{}, ErrMenuItemMissing
			}
			return store.Order{}, fmt.Errorf("loading menu item: %w", err)
		}
		if !item.Available {
			return store.Order{}, ErrItemUnavailable
		}
		total = total.Add(item.Price)
		names = append(names, item.Name)
	}

	order, err := s.store.CreateOrder(ctx, store.CreateOrderParams{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Items:        names,
		Total:        total,
	})
	if err != nil {
		return store.Order{}, fmt.Errorf("creating order: %w", err)
	}

	s.cache.Put(order.ID, order)
	s.publishSnapshot()
	return order, nil
}

// UpdateStatus applies a status change optimistically and returns the
// optimistic order. Staff updates must follow the transition table;
// admins may set any valid status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, role, newStatus string) (store.Order, error) {
	if !status.ValidOrderStatus(newStatus) {
		return store.Order{}, &status.RuleError{Reason: fmt.Sprintf("invalid status %s", newStatus)}
	}

	current, err := s.ensureCached(ctx, id)
	if err != nil {
		return store.Order{}, err
	}

	if role != enum.RoleAdmin {
		if err := status.CanTransitionOrder(current.Status, newStatus); err != nil {
			return store.Order{}, err
		}
	}

	return s.coord.Mutate(id, func(o store.Order) store.Order {
		o.Status = newStatus
		o.UpdatedAt = time.Now()
		return o
	}, func(ctx context.Context) (store.Order, error) {
		return s.store.UpdateOrderStatus(ctx, id, newStatus)
	})
}

// UpdatePayment flips the payment label optimistically. Customers may
// only settle their own order; admins may correct either way on any.
func (s *OrderService) UpdatePayment(ctx context.Context, id uuid.UUID, actor uuid.UUID, role, newPayment string) (store.Order, error) {
	current, err := s.ensureCached(ctx, id)
	if err != nil {
		return store.Order{}, err
	}

	if role == enum.RoleCustomer && current.CustomerID != actor {
		return store.Order{}, ErrNotOrderOwner
	}
	if err := status.CanSetPayment(role, current.PaymentStatus, newPayment); err != nil {
		return store.Order{}, err
	}

	return s.coord.Mutate(id, func(o store.Order) store.Order {
		o.PaymentStatus = newPayment
		o.UpdatedAt = time.Now()
		return o
	}, func(ctx context.Context) (store.Order, error) {
		return s.store.UpdatePaymentStatus(ctx, id, newPayment)
	})
}

// ActiveQueue returns the kitchen queue from the live view: Pending and
// In Progress orders, oldest first.
func (s *OrderService) ActiveQueue() []store.Order {
	return activeQueue(s.cache.All())
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error) {
	if o, ok := s.cache.Get(id); ok {
		return o, nil
	}
	o, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Order{}, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) ListOrders(ctx context.Context) ([]store.Order, error) {
	return s.store.ListOrders(ctx)
}

func (s *OrderService) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]store.Order, error) {
	return s.store.ListOrdersByCustomer(ctx, customerID)
}

// Wait blocks until in-flight mutations settle. Shutdown and test hook.
func (s *OrderService) Wait() {
	s.coord.Wait()
}

// ensureCached returns the live view of an order, loading it from the
// database if it is not cached (terminal orders get evicted, and admins
// can still touch them).
func (s *OrderService) ensureCached(ctx context.Context, id uuid.UUID) (store.Order, error) {
	if o, ok := s.cache.Get(id); ok {
		return o, nil
	}
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrOrderNotFound
		}
		return store.Order{}, fmt.Errorf("loading order: %w", err)
	}
	// PutIfAbsent: a mutation that raced this read may already hold the
	// optimistic value, and the stale DB row must not overwrite it.
	return s.cache.PutIfAbsent(id, o), nil
}

func (s *OrderService) publishSnapshot() {
	if s.publisher != nil {
		s.publisher.PublishQueue(s.ActiveQueue())
	}
}

func activeQueue(orders []store.Order) []store.Order {
	queue := make([]store.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == enum.OrderStatusPending || o.Status == enum.OrderStatusInProgress {
			queue = append(queue, o)
		}
	}
	sort.Slice(queue, func(i, j int) bool {
		return queue[i].CreatedAt.Before(queue[j].CreatedAt)
	})
	return queue
}
