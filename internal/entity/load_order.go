package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// LoadOrder links an order to its load at a stop position.
type LoadOrder struct {
	bun.BaseModel `bun:"table:load_orders"`

	LoadID         string    `bun:",pk" json:"load_id"`
	OrderID        int64     `bun:",pk" json:"order_id"`
	SequenceNumber int       `bun:"sequence_number,notnull" json:"sequence_number"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
