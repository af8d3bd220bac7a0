package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending        = "Pending"
	OrderStatusInProgress     = "In Progress"
	OrderStatusOutForDelivery = "Out for Delivery"
	OrderStatusDelivered      = "Delivered"
	OrderStatusCancelled      = "Cancelled"
)

const (
	PaymentStatusPaid   = "Paid"
	PaymentStatusUnpaid = "Unpaid"
)

const (
	LeaveStatusPending  = "Pending"
	LeaveStatusApproved = "Approved"
	LeaveStatusDenied   = "Denied"
)

// ── Labels (no transition rules) ──

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

const (
	CategoryMainCourse = "Main Course"
	CategoryAppetizer  = "Appetizer"
	CategoryDessert    = "Dessert"
	CategoryDrink      = "Drink"
)
