package delivery

import (
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDeliverNow(t *testing.T) {
	tests := []struct {
		name                      string
		ordered, delivered, resvd int64
		want                      int64
	}{
		{"reserved covers remaining", 10, 4, 6, 6},
		{"reserved caps shipment", 10, 0, 3, 3},
		{"nothing reserved", 10, 0, 0, 0},
		{"already delivered", 10, 10, 5, 0},
		{"over delivered history", 10, 12, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeliverNow(tt.ordered, tt.delivered, tt.resvd))
		})
	}
}

func TestConsumeFIFO(t *testing.T) {
	rows := []model.Reservation{
		{BaseModel: model.BaseModel{ID: 1}, QuantityReserved: 4},
		{BaseModel: model.BaseModel{ID: 2}, QuantityReserved: 5},
	}

	steps, short := ConsumeFIFO(rows, 6)
	assert.Zero(t, short)
	assert.Equal(t, []Consumption{
		{ReservationID: 1, Take: 4},
		{ReservationID: 2, Take: 2, Remainder: 3},
	}, steps)
	assert.False(t, steps[0].Split())
	assert.True(t, steps[1].Split())

	steps, short = ConsumeFIFO(rows, 9)
	assert.Zero(t, short)
	assert.Len(t, steps, 2)

	_, short = ConsumeFIFO(rows, 12)
	assert.Equal(t, int64(3), short)
}

func TestOrderStatus(t *testing.T) {
	assert.Equal(t, model.SOFullyDelivered, OrderStatus([]ItemProgress{
		{ItemID: 1, Ordered: 10, Delivered: 10},
		{ItemID: 2, Ordered: 3, Delivered: 3},
	}))
	assert.Equal(t, model.SOPartiallyDelivered, OrderStatus([]ItemProgress{
		{ItemID: 1, Ordered: 10, Delivered: 10},
		{ItemID: 2, Ordered: 3, Delivered: 1},
	}))
}
