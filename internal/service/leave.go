package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/session"
	"github.com/coral-stay/api/internal/status"
	"github.com/coral-stay/api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Errors returned by the leave service.
var (
	ErrLeaveNotFound  = errors.New("leave request not found")
	ErrLeaveDecided   = errors.New("leave request already decided")
	ErrLeaveDateOrder = errors.New("end date is before start date")
	ErrLeaveReason    = errors.New("reason must be at least 10 characters")
)

// LeaveStore defines the DB methods the leave service needs.
// Satisfied by *store.Store; narrow interface for testability.
type LeaveStore interface {
	CreateLeaveRequest(ctx context.Context, arg store.CreateLeaveRequestParams) (store.LeaveRequest, error)
	GetLeaveRequest(ctx context.Context, id uuid.UUID) (store.LeaveRequest, error)
	ListLeaveRequests(ctx context.Context) ([]store.LeaveRequest, error)
	ListLeaveRequestsByStaff(ctx context.Context, staffID uuid.UUID) ([]store.LeaveRequest, error)
	DecideLeaveRequest(ctx context.Context, id uuid.UUID, status string) (store.LeaveRequest, error)
}

// LeaveService owns the admin's live view of pending requests.
// Decisions go through the same optimistic coordinator as orders: the
// admin sees the decision immediately, the conditional UPDATE lands in
// the background, and a lost race rolls the view back.
type LeaveService struct {
	store LeaveStore
	cache *session.Cache[store.LeaveRequest]
	coord *session.Coordinator[store.LeaveRequest]
}

func NewLeaveService(st LeaveStore, commitTimeout time.Duration) *LeaveService {
	s := &LeaveService{store: st}
	s.cache = session.NewCache[store.LeaveRequest]()
	s.coord = session.NewCoordinator(s.cache, (*leaveNotifier)(s), commitTimeout)
	return s
}

// leaveNotifier adapts LeaveService to session.Notifier.
type leaveNotifier LeaveService

func (n *leaveNotifier) MutationCommitted(id uuid.UUID, l store.LeaveRequest) {
	// Decided requests leave the pending view once persisted.
	if l.Status != enum.LeaveStatusPending {
		n.cache.Delete(id)
	}
}

func (n *leaveNotifier) MutationFailed(uuid.UUID, store.LeaveRequest, error) {
	// The coordinator already restored the snapshot and logged the cause.
}

// LoadPending rehydrates the pending view from the database. Called at
// startup before the server accepts traffic.
func (s *LeaveService) LoadPending(ctx context.Context) error {
	requests, err := s.store.ListLeaveRequests(ctx)
	if err != nil {
		return fmt.Errorf("loading leave requests: %w", err)
	}
	items := make(map[uuid.UUID]store.LeaveRequest)
	for _, l := range requests {
		if l.Status == enum.LeaveStatusPending {
			items[l.ID] = l
		}
	}
	s.cache.Reset(items)
	return nil
}

type CreateLeaveRequest struct {
	StaffID   uuid.UUID
	StaffName string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func (s *LeaveService) Create(ctx context.Context, req CreateLeaveRequest) (store.LeaveRequest, error) {
	if req.EndDate.Before(req.StartDate) {
		return store.LeaveRequest{}, ErrLeaveDateOrder
	}
	if len(strings.TrimSpace(req.Reason)) < 10 {
		return store.LeaveRequest{}, ErrLeaveReason
	}

	request, err := s.store.CreateLeaveRequest(ctx, store.CreateLeaveRequestParams{
		StaffID:   req.StaffID,
		StaffName: req.StaffName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		return store.LeaveRequest{}, fmt.Errorf("creating leave request: %w", err)
	}

	s.cache.Put(request.ID, request)
	return request, nil
}

// Decide moves a Pending request to Approved or Denied, optimistically.
// The store's conditional UPDATE backstops a decision racing this one:
// if the row no longer matches, the commit fails and the view rolls
// back to Pending.
func (s *LeaveService) Decide(ctx context.Context, id uuid.UUID, decision string) (store.LeaveRequest, error) {
	current, err := s.ensureCached(ctx, id)
	if err != nil {
		return store.LeaveRequest{}, err
	}
	if current.Status != enum.LeaveStatusPending {
		return store.LeaveRequest{}, fmt.Errorf("%w: already %s", ErrLeaveDecided, current.Status)
	}
	if err := status.CanDecideLeave(current.Status, decision); err != nil {
		return store.LeaveRequest{}, err
	}

	return s.coord.Mutate(id, func(l store.LeaveRequest) store.LeaveRequest {
		l.Status = decision
		return l
	}, func(ctx context.Context) (store.LeaveRequest, error) {
		return s.store.DecideLeaveRequest(ctx, id, decision)
	})
}

func (s *LeaveService) List(ctx context.Context) ([]store.LeaveRequest, error) {
	return s.store.ListLeaveRequests(ctx)
}

func (s *LeaveService) ListByStaff(ctx context.Context, staffID uuid.UUID) ([]store.LeaveRequest, error) {
	return s.store.ListLeaveRequestsByStaff(ctx, staffID)
}

// Wait blocks until in-flight decisions settle. Shutdown and test hook.
func (s *LeaveService) Wait() {
	s.coord.Wait()
}

// ensureCached returns the live view of a request, loading it from the
// database if it is not cached (decided requests get evicted, but a
// stale client may still address them).
func (s *LeaveService) ensureCached(ctx context.Context, id uuid.UUID) (store.LeaveRequest, error) {
	if l, ok := s.cache.Get(id); ok {
		return l, nil
	}
	l, err := s.store.GetLeaveRequest(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.LeaveRequest{}, ErrLeaveNotFound
		}
		return store.LeaveRequest{}, fmt.Errorf("loading leave request: %w", err)
	}
	// PutIfAbsent: a decision that raced this read may already hold the
	// optimistic value, and the stale DB row must not overwrite it.
	return s.cache.PutIfAbsent(id, l), nil
}
