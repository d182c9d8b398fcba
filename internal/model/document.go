package model

import "time"

type DocPairStatus string

const (
	DocPairIssued  DocPairStatus = "ISSUED"
	DocPairReprint DocPairStatus = "REPRINT"
	DocPairVoid    DocPairStatus = "VOID"
)

// DocPair is one claimed sequence of the paired delivery-note/invoice family.
type DocPair struct {
	ID         int64         `db:"id" json:"id"`
	FiscalYear int           `db:"fiscal_year" json:"fiscal_year"`
	YearYY     int           `db:"year_yy" json:"year_yy"`
	Sequence   int64         `db:"sequence" json:"sequence"`
	Status     DocPairStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// DocCounter is the per-kind counter row keyed by (fiscal_year, kind).
type DocCounter struct {
	FiscalYear int    `db:"fiscal_year"`
	Kind       string `db:"kind"`
	Prefix     string `db:"prefix"`
	LastSeq    int64  `db:"last_seq"`
}
