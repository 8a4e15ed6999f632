package model

import "time"

// OrderKind distinguishes fuel deliveries from product deliveries.
type OrderKind string

const (
	OrderKindFuel    OrderKind = "fuel"
	OrderKindProduct OrderKind = "product"
)

// Valid reports whether k is a known order kind.
func (k OrderKind) Valid() bool {
	return k == OrderKindFuel || k == OrderKindProduct
}

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPriced     OrderStatus = "priced"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var allOrderStatuses = [...]OrderStatus{
	OrderStatusPending, OrderStatusPriced, OrderStatusAssigned,
	OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled,
}

// OrderStatuses returns every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(allOrderStatuses))
	copy(out, allOrderStatuses[:])
	return out
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range allOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Position is the latest reported location of a delivery.
type Position struct {
	Lat        float64
	Lng        float64
	RecordedAt time.Time
}

// ProductLine is a single product entry of a product order.
type ProductLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderDetails holds the kind specific payload of an order.
type OrderDetails struct {
	Address  string        `json:"address"`
	Notes    string        `json:"notes,omitempty"`
	FuelType string        `json:"fuelType,omitempty"`
	Liters   float64       `json:"liters,omitempty"`
	Products []ProductLine `json:"products,omitempty"`
}

// Order is a delivery request placed by a customer.
type Order struct {
	ID           int64
	Kind         OrderKind
	CustomerID   int64
	DriverID     *int64
	Status       OrderStatus
	Price        *float64
	Position     *Position
	Details      OrderDetails
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderPatch is a guarded mutation of an order. ExpectedStatus must match the
// stored status for the write to apply; nil fields are left untouched.
type OrderPatch struct {
	ExpectedStatus   OrderStatus
	ExpectedDriverID *int64

	Status       *OrderStatus
	Price        *float64
	DriverID     *int64
	Position     *Position
	CancelReason *string
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status     *OrderStatus
	Kind       *OrderKind
	CustomerID *int64
	DriverID   *int64
	// ParticipantID matches orders the user placed or is assigned to.
	ParticipantID *int64
}

// OrderStats aggregates order counters.
type OrderStats struct {
	Total     int64                 `json:"totalOrders"`
	ByStatus  map[OrderStatus]int64 `json:"byStatus"`
	ByKind    map[OrderKind]int64   `json:"byKind"`
	Revenue   float64               `json:"totalRevenue"`
	Pending   int64                 `json:"pendingOrders"`
	Completed int64                 `json:"completedOrders"`
	Cancelled int64                 `json:"cancelledOrders"`
}
