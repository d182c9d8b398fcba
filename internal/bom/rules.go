package bom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-stockflow-service/internal/bom/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
)

const CodePrefix = "BOM-"

// FormatCode renders BOM-### for the n-th BOM.
func FormatCode(n int64) string {
	return fmt.Sprintf("%s%03d", CodePrefix, n)
}

// ParseCode returns the numeric part of a BOM code.
func ParseCode(code string) (int64, bool) {
	rest, ok := strings.CutPrefix(code, CodePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ComponentStock is one BOM component joined with its product quantities.
type ComponentStock struct {
	ProductID        int64  `db:"product_id" json:"product_id"`
	ProductCode      string `db:"product_no" json:"product_no"`
	ProductName      string `db:"product_name" json:"product_name"`
	QuantityRequired int64  `db:"quantity_required" json:"quantity_required"`
	Stock            int64  `db:"stock" json:"stock"`
	Reserved         int64  `db:"reserved" json:"reserved"`
	IsDeleted        bool   `db:"is_deleted" json:"-"`
}

// Available is stock - reserved, floored at zero. Deleted products have none.
func (c ComponentStock) Available() int64 {
	if c.IsDeleted {
		return 0
	}
	return max(c.Stock-c.Reserved, 0)
}

// MaxBuildable is the minimum over components of available / per-unit
// quantity. A BOM without components, or with a zero quantity, builds 0.
func MaxBuildable(components []ComponentStock) int64 {
	if len(components) == 0 {
		return 0
	}
	var best int64 = -1
	for _, c := range components {
		if c.QuantityRequired <= 0 {
			return 0
		}
		n := c.Available() / c.QuantityRequired
		if best < 0 || n < best {
			best = n
		}
	}
	return best
}

// Preview computes component consumption for qty units. canBuild is true
// when no component is short.
func Preview(components []ComponentStock, qty int64) (lines []dto.PreviewLine, canBuild bool) {
	lines = make([]dto.PreviewLine, 0, len(components))
	canBuild = true
	for _, c := range components {
		required := c.QuantityRequired * qty
		available := c.Available()
		shortage := max(required-available, 0)
		if shortage > 0 {
			canBuild = false
		}
		lines = append(lines, dto.PreviewLine{
			ProductID:   c.ProductID,
			ProductCode: c.ProductCode,
			ProductName: c.ProductName,
			PerUnit:     c.QuantityRequired,
			Required:    required,
			Available:   available,
			Shortage:    shortage,
		})
	}
	return lines, canBuild
}

// Requirement is the total quantity of one product needed for a build.
type Requirement struct {
	ProductID int64
	Required  int64
}

// Requirements multiplies components by qty, merging repeated products and
// keeping first-seen order.
func Requirements(components []model.BOMComponent, qty int64) []Requirement {
	idx := make(map[int64]int, len(components))
	out := make([]Requirement, 0, len(components))
	for _, c := range components {
		if i, ok := idx[c.ProductID]; ok {
			out[i].Required += c.QuantityRequired * qty
			continue
		}
		idx[c.ProductID] = len(out)
		out = append(out, Requirement{ProductID: c.ProductID, Required: c.QuantityRequired * qty})
	}
	return out
}

func RequirementIDs(reqs []Requirement) []int64 {
	ids := make([]int64, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ProductID
	}
	return ids
}
