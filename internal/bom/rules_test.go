package bom

import (
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestMaxBuildable(t *testing.T) {
	x := ComponentStock{ProductID: 1, QuantityRequired: 2, Stock: 9}
	y := ComponentStock{ProductID: 2, QuantityRequired: 1, Stock: 3}

	cases := []struct {
		name  string
		comps []ComponentStock
		want  int64
	}{
		{"min across components", []ComponentStock{x, y}, 3},
		{"no components", nil, 0},
		{"zero quantity component", []ComponentStock{x, {ProductID: 3, QuantityRequired: 0, Stock: 100}}, 0},
		{"reserved reduces availability", []ComponentStock{{ProductID: 1, QuantityRequired: 2, Stock: 9, Reserved: 5}}, 2},
		{"negative availability floors at zero", []ComponentStock{{ProductID: 1, QuantityRequired: 1, Stock: 1, Reserved: 3}}, 0},
		{"deleted component", []ComponentStock{{ProductID: 1, QuantityRequired: 1, Stock: 10, IsDeleted: true}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaxBuildable(tc.comps))
		})
	}
}

func TestPreview(t *testing.T) {
	comps := []ComponentStock{
		{ProductID: 1, ProductCode: "RM-X", QuantityRequired: 2, Stock: 9},
		{ProductID: 2, ProductCode: "RM-Y", QuantityRequired: 1, Stock: 3},
	}

	lines, ok := Preview(comps, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(6), lines[0].Required)
	assert.Equal(t, int64(0), lines[0].Shortage)

	lines, ok = Preview(comps, 5)
	assert.False(t, ok)
	assert.Equal(t, int64(1), lines[0].Shortage)
	assert.Equal(t, int64(2), lines[1].Shortage)

	lines, ok = Preview(comps, 0)
	assert.True(t, ok)
	assert.Equal(t, int64(0), lines[1].Required)
}

func TestRequirementsMergesRepeatedProducts(t *testing.T) {
	reqs := Requirements([]model.BOMComponent{
		{ProductID: 5, QuantityRequired: 2},
		{ProductID: 3, QuantityRequired: 1},
		{ProductID: 5, QuantityRequired: 1},
	}, 4)

	assert.Equal(t, []Requirement{{ProductID: 5, Required: 12}, {ProductID: 3, Required: 4}}, reqs)
	assert.Equal(t, []int64{5, 3}, RequirementIDs(reqs))
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "BOM-001", FormatCode(1))
	assert.Equal(t, "BOM-1000", FormatCode(1000))

	n, ok := ParseCode("BOM-042")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = ParseCode("RM-042")
	assert.False(t, ok)
	_, ok = ParseCode("BOM-")
	assert.False(t, ok)
}
