package model

import "time"

type MovementType string

const (
	MovementReserve       MovementType = "reserve"
	MovementUnreserve     MovementType = "unreserve"
	MovementDeliver       MovementType = "deliver"
	MovementProduceInput  MovementType = "produce_consume"
	MovementProduceOutput MovementType = "produce_output"
	MovementReceive       MovementType = "receive"
	MovementAdjust        MovementType = "adjustment"
)

// StockMovement is the audit row written for every Product Ledger mutation.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	ProductID      int64        `db:"product_id" json:"product_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	StockChange    int64        `db:"stock_change" json:"stock_change"`
	ReservedChange int64        `db:"reserved_change" json:"reserved_change"`
	StockAfter     int64        `db:"stock_after" json:"stock_after"`
	ReservedAfter  int64        `db:"reserved_after" json:"reserved_after"`
	ReferenceType  *string      `db:"reference_type" json:"reference_type"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id"`
	Notes          string       `db:"notes" json:"notes"`
	CreatedBy      *string      `db:"created_by" json:"created_by"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
