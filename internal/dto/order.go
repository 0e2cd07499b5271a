package dto

import (
	"time"

	"github.com/Additional-Code/loadplanner/internal/entity"
)

// CreateOrderRequest is the intake payload for a new shipment order.
type CreateOrderRequest struct {
	Number       string     `json:"order_number"`
	Customer     string     `json:"customer"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	WeightLbs    float64    `json:"weight_lbs"`
	VolumeCuft   float64    `json:"volume_cuft"`
	Priority     string     `json:"priority"`
	MustArriveBy *time.Time `json:"must_arrive_by,omitempty"`
}

// Entity maps the request onto a storable order.
func (r CreateOrderRequest) Entity() *entity.Order {
	return &entity.Order{
		Number:       r.Number,
		Customer:     r.Customer,
		Origin:       r.Origin,
		Destination:  r.Destination,
		WeightLbs:    r.WeightLbs,
		VolumeCuft:   r.VolumeCuft,
		Priority:     r.Priority,
		MustArriveBy: r.MustArriveBy,
	}
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID                 int64      `json:"id"`
	Number             string     `json:"order_number"`
	Customer           string     `json:"customer,omitempty"`
	Origin             string     `json:"origin"`
	Destination        string     `json:"destination"`
	WeightLbs          float64    `json:"weight_lbs"`
	VolumeCuft         float64    `json:"volume_cuft"`
	Priority           string     `json:"priority"`
	Status             string     `json:"status"`
	MustArriveBy       *time.Time `json:"must_arrive_by,omitempty"`
	LoadID             *string    `json:"load_id,omitempty"`
	AssignedLoadNumber *string    `json:"assigned_load_number,omitempty"`
	PlannedToLoadAt    *time.Time `json:"planned_to_load_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewOrderResponse converts a stored order.
func NewOrderResponse(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:                 o.ID,
		Number:             o.Number,
		Customer:           o.Customer,
		Origin:             o.Origin,
		Destination:        o.Destination,
		WeightLbs:          o.WeightLbs,
		VolumeCuft:         o.VolumeCuft,
		Priority:           o.Priority,
		Status:             o.Status,
		MustArriveBy:       o.MustArriveBy,
		LoadID:             o.LoadID,
		AssignedLoadNumber: o.AssignedLoadNumber,
		PlannedToLoadAt:    o.PlannedToLoadAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// NewOrderList converts a slice of stored orders.
func NewOrderList(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = NewOrderResponse(&orders[i])
	}
	return out
}
