package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order is a shipment request awaiting or holding a load assignment.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID                 int64      `bun:",pk,autoincrement" json:"id"`
	Number             string     `bun:"order_number,notnull,unique" json:"order_number"`
	Customer           string     `bun:"customer" json:"customer"`
	Origin             string     `bun:"origin" json:"origin"`
	Destination        string     `bun:"destination,notnull" json:"destination"`
	WeightLbs          float64    `bun:"weight_lbs,notnull" json:"weight_lbs"`
	VolumeCuft         float64    `bun:"volume_cuft,notnull" json:"volume_cuft"`
	Priority           string     `bun:"priority,notnull,default:'Normal'" json:"priority"`
	Status             string     `bun:"status,notnull,default:'Pending'" json:"status"`
	MustArriveBy       *time.Time `bun:"must_arrive_by" json:"must_arrive_by,omitempty"`
	LoadID             *string    `bun:"load_id" json:"load_id,omitempty"`
	AssignedLoadNumber *string    `bun:"assigned_load_number" json:"assigned_load_number,omitempty"`
	PlannedToLoadAt    *time.Time `bun:"planned_to_load_at" json:"planned_to_load_at,omitempty"`
	CreatedAt          time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time  `bun:"updated_at,nullzero" json:"updated_at"`
}
