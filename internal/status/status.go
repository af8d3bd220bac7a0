// Package status holds the pure transition rules for order, payment and
// leave-request statuses. It has no side effects; persistence and
// permissiveness decisions live with the callers.
package status

import (
	"fmt"

	"github.com/coral-stay/api/internal/enum"
)

// RuleError is a rejection by one of the rule tables here. Its message
// names statuses the caller sent and is safe to show them; anything
// else coming out of a mutation is an infrastructure failure and stays
// in the operator log.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

func reject(format string, args ...interface{}) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}

// orderTransitions defines the staff-facing order lifecycle.
// Key is current status, value is the set of statuses it can move to.
// Delivered and Cancelled are terminal.
var orderTransitions = map[string][]string{
	enum.OrderStatusPending:        {enum.OrderStatusInProgress, enum.OrderStatusCancelled},
	enum.OrderStatusInProgress:     {enum.OrderStatusOutForDelivery, enum.OrderStatusCancelled},
	enum.OrderStatusOutForDelivery: {enum.OrderStatusDelivered},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending,
		enum.OrderStatusInProgress,
		enum.OrderStatusOutForDelivery,
		enum.OrderStatusDelivered,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

// OrderTerminal reports whether no further order transition is permitted.
func OrderTerminal(s string) bool {
	_, ok := orderTransitions[s]
	return ValidOrderStatus(s) && !ok
}

// CanTransitionOrder checks the transition table. The admin surface
// deliberately bypasses this and may set any valid status; staff updates
// must pass it.
func CanTransitionOrder(from, to string) error {
	allowed, ok := orderTransitions[from]
	if !ok {
		return reject("cannot transition from %s", from)
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return reject("cannot transition from %s to %s", from, to)
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	return s == enum.PaymentStatusPaid || s == enum.PaymentStatusUnpaid
}

// CanSetPayment checks who may flip the payment label in which direction.
// Customers may only settle (Unpaid → Paid); admins may move it either way
// for manual correction or refund bookkeeping. Payment status is never
// coupled to order status: a Cancelled order can still be marked Paid.
func CanSetPayment(role, from, to string) error {
	if !ValidPaymentStatus(to) {
		return reject("invalid payment status %s", to)
	}
	if role == enum.RoleAdmin {
		return nil
	}
	if from == enum.PaymentStatusUnpaid && to == enum.PaymentStatusPaid {
		return nil
	}
	return reject("cannot change payment status from %s to %s", from, to)
}

// ValidLeaveStatus reports whether s is a known leave-request status.
func ValidLeaveStatus(s string) bool {
	switch s {
	case enum.LeaveStatusPending, enum.LeaveStatusApproved, enum.LeaveStatusDenied:
		return true
	}
	return false
}

// CanDecideLeave validates an admin decision on a leave request.
// Approved and Denied are terminal; only Pending requests can be decided.
func CanDecideLeave(from, to string) error {
	if to != enum.LeaveStatusApproved && to != enum.LeaveStatusDenied {
		return reject("invalid leave decision %s", to)
	}
	if from != enum.LeaveStatusPending {
		return reject("request already %s", from)
	}
	return nil
}
