// Package docnumber issues sequential document numbers scoped by kind and
// fiscal year. Every allocation runs inside the caller's transaction so a
// rolled back document also rolls back its number.
package docnumber

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindPaired        Kind = "paired"
	KindQuotation     Kind = "quotation"
	KindPurchaseOrder Kind = "po"
	KindGoodsReceipt  Kind = "gr"
)

const (
	PrefixDeliveryNote  = "MDN"
	PrefixInvoice       = "MINV"
	PrefixQuotation     = "MQ"
	PrefixPurchaseOrder = "MPO"
	PrefixGoodsReceipt  = "MGR"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPaired, KindQuotation, KindPurchaseOrder, KindGoodsReceipt:
		return true
	}
	return false
}

// counterPrefix is the prefix of the kinds served by the counter table.
func (k Kind) counterPrefix() (string, bool) {
	switch k {
	case KindQuotation:
		return PrefixQuotation, true
	case KindPurchaseOrder:
		return PrefixPurchaseOrder, true
	case KindGoodsReceipt:
		return PrefixGoodsReceipt, true
	}
	return "", false
}

// FiscalYear is the full year and its two-digit form embedded in numbers.
type FiscalYear struct {
	Year  int
	Short int
}

// Calendar maps a wall-clock instant to the fiscal year used for numbering.
type Calendar interface {
	FiscalYear(t time.Time) FiscalYear
}

// BuddhistCalendar counts years from 543 BCE (2026 is 2569).
type BuddhistCalendar struct{}

func (BuddhistCalendar) FiscalYear(t time.Time) FiscalYear {
	y := t.Year() + 543
	return FiscalYear{Year: y, Short: y % 100}
}

type GregorianCalendar struct{}

func (GregorianCalendar) FiscalYear(t time.Time) FiscalYear {
	y := t.Year()
	return FiscalYear{Year: y, Short: y % 100}
}

// CalendarByName resolves DOC_CALENDAR. Unknown names fall back to Buddhist.
func CalendarByName(name string) Calendar {
	if strings.EqualFold(name, "gregorian") {
		return GregorianCalendar{}
	}
	return BuddhistCalendar{}
}

// Format renders {prefix}{yy}-{seq3}.
func Format(prefix string, fy FiscalYear, seq int64) string {
	return fmt.Sprintf("%s%03d", yearPrefix(prefix, fy), seq)
}

func yearPrefix(prefix string, fy FiscalYear) string {
	return fmt.Sprintf("%s%02d-", prefix, fy.Short)
}

// Number is one allocated document number. Paired allocations also carry the
// pair id and both the delivery-note and invoice numbers.
type Number struct {
	Kind           Kind       `json:"kind"`
	FiscalYear     FiscalYear `json:"-"`
	Sequence       int64      `json:"sequence"`
	Value          string     `json:"value"`
	PairID         int64      `json:"pair_id,omitempty"`
	DeliveryNoteNo string     `json:"delivery_note_no,omitempty"`
	InvoiceNo      string     `json:"invoice_no,omitempty"`
}
