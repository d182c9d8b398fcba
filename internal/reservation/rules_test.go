package reservation

import (
	"errors"
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestPosition(t *testing.T) {
	cases := []struct {
		name       string
		pos        Position
		remaining  int64
		unreserved int64
	}{
		{"fresh order", Position{Ordered: 10}, 10, 10},
		{"partly delivered", Position{Ordered: 10, Delivered: 4}, 6, 6},
		{"partly reserved", Position{Ordered: 10, Delivered: 4, Reserved: 5}, 6, 1},
		{"fully covered", Position{Ordered: 10, Delivered: 4, Reserved: 6}, 6, 0},
		{"over delivered clamps", Position{Ordered: 5, Delivered: 7}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.remaining, tc.pos.Remaining())
			assert.Equal(t, tc.unreserved, tc.pos.Unreserved())
		})
	}
}

func TestCheckIncrease(t *testing.T) {
	pos := Position{Ordered: 50, Reserved: 30}

	assert.NoError(t, CheckIncrease("reserve", 1, pos, 70, 20))

	err := CheckIncrease("reserve", 1, pos, 70, 21)
	assert.True(t, errors.Is(err, apperr.ErrInsufficient))
	assert.Contains(t, err.Error(), "remaining unreserved 20")

	err = CheckIncrease("reserve", 1, pos, 5, 10)
	assert.True(t, errors.Is(err, apperr.ErrInsufficient))
	assert.Contains(t, err.Error(), "available 5")
}

func TestOrderStatus(t *testing.T) {
	line := func(ordered, delivered, reserved int64) StatusLine {
		return StatusLine{Position: Position{Ordered: ordered, Delivered: delivered, Reserved: reserved}}
	}
	cases := []struct {
		name  string
		lines []StatusLine
		want  model.SalesOrderStatus
	}{
		{"no lines", nil, model.SOAwaitingReservation},
		{"nothing reserved", []StatusLine{line(10, 0, 0), line(3, 0, 0)}, model.SOAwaitingReservation},
		{"one line reserved", []StatusLine{line(10, 0, 10), line(3, 0, 0)}, model.SOPartiallyReserved},
		{"short reservation", []StatusLine{line(10, 0, 4)}, model.SOPartiallyReserved},
		{"all covered", []StatusLine{line(10, 0, 10), line(3, 0, 3)}, model.SOFullyReserved},
		{"delivered part counts", []StatusLine{line(10, 4, 6)}, model.SOFullyReserved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OrderStatus(tc.lines))
			assert.Equal(t, OrderStatus(tc.lines), OrderStatus(tc.lines))
		})
	}
}
