package dto

import (
	"time"

	"github.com/polkiloo/fueldelivery/internal/domain/lifecycle"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

// FuelOrderRequest places a fuel delivery.
type FuelOrderRequest struct {
	Address  string  `json:"address"`
	FuelType string  `json:"fuelType"`
	Liters   float64 `json:"liters"`
	Notes    string  `json:"notes"`
}

// ProductOrderRequest places a product delivery.
type ProductOrderRequest struct {
	Address  string              `json:"address"`
	Notes    string              `json:"notes"`
	Products []model.ProductLine `json:"products"`
}

// StatusRequest is a generic status change.
type StatusRequest struct {
	Status   string   `json:"status" binding:"required"`
	Price    *float64 `json:"price"`
	DriverID *int64   `json:"driverId"`
	Reason   string   `json:"reason"`
}

// PriceRequest sets the price of a pending order.
type PriceRequest struct {
	Price *float64 `json:"price" binding:"required"`
}

// AssignDriverRequest names the driver for a priced order.
type AssignDriverRequest struct {
	DriverID *int64 `json:"driverId" binding:"required"`
}

// TrackingRequest is a driver position report.
type TrackingRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// CancelRequest optionally explains a cancellation.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// PositionResponse is the last known driver position.
type PositionResponse struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID           int64              `json:"id"`
	Kind         string             `json:"kind"`
	CustomerID   int64              `json:"customerId"`
	DriverID     *int64             `json:"driverId,omitempty"`
	Status       string             `json:"status"`
	Price        *float64           `json:"price,omitempty"`
	Position     *PositionResponse  `json:"tracking,omitempty"`
	Details      model.OrderDetails `json:"details"`
	CancelReason string             `json:"cancelReason,omitempty"`
	NextStatuses []string           `json:"nextStatuses"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// NewOrderResponse converts a domain order.
func NewOrderResponse(o model.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		Kind:         string(o.Kind),
		CustomerID:   o.CustomerID,
		DriverID:     o.DriverID,
		Status:       string(o.Status),
		Price:        o.Price,
		Details:      o.Details,
		CancelReason: o.CancelReason,
		NextStatuses: []string{},
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.Position != nil {
		resp.Position = &PositionResponse{Lat: o.Position.Lat, Lng: o.Position.Lng, RecordedAt: o.Position.RecordedAt}
	}
	for _, s := range lifecycle.NextStatuses(o.Status) {
		resp.NextStatuses = append(resp.NextStatuses, string(s))
	}
	return resp
}

// NewOrderResponses converts a slice of domain orders.
func NewOrderResponses(orders []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}
