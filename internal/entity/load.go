package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Load is a planned truck dispatch.
type Load struct {
	bun.BaseModel `bun:"table:loads"`

	ID                 string      `bun:",pk" json:"id"`
	Number             string      `bun:"load_number,notnull,unique" json:"load_number"`
	TruckType          string      `bun:"truck_type,notnull" json:"truck_type"`
	Origin             string      `bun:"origin,notnull" json:"origin"`
	TotalWeightLbs     float64     `bun:"total_weight_lbs,notnull" json:"total_weight_lbs"`
	TotalVolumeCuft    float64     `bun:"total_volume_cuft,notnull" json:"total_volume_cuft"`
	UtilizationPercent int         `bun:"utilization_percent,notnull" json:"utilization_percent"`
	Status             string      `bun:"status,notnull" json:"status"`
	AssignedCarrier    string      `bun:"assigned_carrier,notnull" json:"assigned_carrier"`
	Reasoning          string      `bun:"reasoning" json:"reasoning"`
	MustArriveBy       *time.Time  `bun:"must_arrive_by" json:"must_arrive_by,omitempty"`
	MustPickUpBy       *time.Time  `bun:"must_pick_up_by" json:"must_pick_up_by,omitempty"`
	CreatedAt          time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	Orders             []LoadOrder `bun:"rel:has-many,join:id=load_id" json:"orders,omitempty"`
}
