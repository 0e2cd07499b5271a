package consolidation

import (
	"strings"
	"time"
)

// Priority ranks how urgently an order must move.
type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities from most (0) to least urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// ParsePriority normalises free text, falling back to Normal.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "urgent":
		return PriorityUrgent
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// Status is the order lifecycle.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusAssigned  Status = "Assigned"
	StatusInTransit Status = "In Transit"
	StatusDelivered Status = "Delivered"
)

// Order is a shipment request considered for packing.
type Order struct {
	ID          int64
	Number      string
	Customer    string
	Origin      string
	Destination string
	WeightLbs   float64
	VolumeCuft  float64
	Priority    Priority
	Status      Status
	// MustArriveBy is the hard delivery deadline; zero when the order carries none.
	MustArriveBy time.Time
}

// OriginKey returns the grouping key for the order's pickup location.
func (o Order) OriginKey() OriginKey {
	return OriginOf(o.Origin)
}
