package model

type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "reserved"
	ReservationShipped   ReservationStatus = "shipped"
	ReservationCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	BaseModel
	SalesOrderID     int64             `db:"sales_order_id" json:"sales_order_id"`
	ProductID        int64             `db:"product_id" json:"product_id"`
	QuantityReserved int64             `db:"quantity_reserved" json:"quantity_reserved"`
	Status           ReservationStatus `db:"status" json:"status"`
	IsDeleted        bool              `db:"is_deleted" json:"-"`
	UsedInDNID       *int64            `db:"used_in_dn_id" json:"used_in_dn_id,omitempty"`
}

// Active reports whether the reservation still holds stock.
func (r *Reservation) Active() bool {
	return !r.IsDeleted && r.Status == ReservationReserved && r.UsedInDNID == nil
}

// ReservationView is a reservation joined with its product for listing.
type ReservationView struct {
	Reservation
	ProductCode string `db:"product_no" json:"product_no"`
	ProductName string `db:"product_name" json:"product_name"`
	Stock       int64  `db:"stock" json:"stock"`
	Reserved    int64  `db:"reserved" json:"reserved"`
	Available   int64  `db:"available" json:"available"`
}
