// Package memstore is an in-memory implementation of every repository with
// transactional semantics: a transaction runs alone and an error restores
// the state it started from. It backs usecase tests.
package memstore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var ErrDuplicateKey = errors.New("memstore: duplicate key")

type state struct {
	nextID int64

	products      map[int64]model.Product
	movements     []model.StockMovement
	customerPrice map[[2]int64]decimal.Decimal

	salesOrders  map[int64]model.SalesOrder
	orderItems   map[int64]model.SalesOrderItem
	reservations map[int64]model.Reservation

	boms       map[int64]model.BOM
	components []model.BOMComponent

	pairs    map[int64]model.DocPair
	counters map[string]int64

	deliveryNotes map[int64]model.DeliveryNote
	dnItems       []model.DeliveryNoteItem
	invoices      map[int64]model.Invoice
	invoiceItems  []model.InvoiceItem

	purchaseOrders map[int64]model.PurchaseOrder
	poItems        map[int64]model.PurchaseOrderItem
	receipts       map[int64]model.GoodsReceipt
	receiptItems   []model.GoodsReceiptItem

	quotations     map[int64]model.Quotation
	quotationItems []model.QuotationItem
}

func newState() *state {
	return &state{
		products:       map[int64]model.Product{},
		customerPrice:  map[[2]int64]decimal.Decimal{},
		salesOrders:    map[int64]model.SalesOrder{},
		orderItems:     map[int64]model.SalesOrderItem{},
		reservations:   map[int64]model.Reservation{},
		boms:           map[int64]model.BOM{},
		pairs:          map[int64]model.DocPair{},
		counters:       map[string]int64{},
		deliveryNotes:  map[int64]model.DeliveryNote{},
		invoices:       map[int64]model.Invoice{},
		purchaseOrders: map[int64]model.PurchaseOrder{},
		poItems:        map[int64]model.PurchaseOrderItem{},
		receipts:       map[int64]model.GoodsReceipt{},
		quotations:     map[int64]model.Quotation{},
	}
}

func (s *state) clone() *state {
	return &state{
		nextID:         s.nextID,
		products:       maps.Clone(s.products),
		movements:      slices.Clone(s.movements),
		customerPrice:  maps.Clone(s.customerPrice),
		salesOrders:    maps.Clone(s.salesOrders),
		orderItems:     maps.Clone(s.orderItems),
		reservations:   maps.Clone(s.reservations),
		boms:           maps.Clone(s.boms),
		components:     slices.Clone(s.components),
		pairs:          maps.Clone(s.pairs),
		counters:       maps.Clone(s.counters),
		deliveryNotes:  maps.Clone(s.deliveryNotes),
		dnItems:        slices.Clone(s.dnItems),
		invoices:       maps.Clone(s.invoices),
		invoiceItems:   slices.Clone(s.invoiceItems),
		purchaseOrders: maps.Clone(s.purchaseOrders),
		poItems:        maps.Clone(s.poItems),
		receipts:       maps.Clone(s.receipts),
		receiptItems:   slices.Clone(s.receiptItems),
		quotations:     maps.Clone(s.quotations),
		quotationItems: slices.Clone(s.quotationItems),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store holds the data. txMu plays the role of row locks by running one
// transaction at a time; mu guards individual reads and writes.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
	now  func() time.Time
}

func New() *Store {
	return &Store{data: newState(), now: time.Now}
}

// WithinTx implements postgres.Transactor. fn receives a nil executor.
func (s *Store) WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()
	return fn(nil)
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// Seed helpers

func (s *Store) AddProduct(p model.Product) int64 {
	var id int64
	s.write(func(d *state) {
		id = d.id()
		p.ID = id
		p.CreatedAt, p.UpdatedAt = s.now(), s.now()
		p.Available = p.Stock - p.Reserved
		d.products[id] = p
	})
	return id
}

func (s *Store) DeleteProduct(id int64) {
	s.write(func(d *state) {
		p := d.products[id]
		p.IsDeleted = true
		d.products[id] = p
	})
}

func (s *Store) SetCustomerPrice(productID, customerID int64, price decimal.Decimal) {
	s.write(func(d *state) {
		d.customerPrice[[2]int64{productID, customerID}] = price
	})
}

func (s *Store) AddSalesOrder(orderNo string, customerID int64) int64 {
	var id int64
	s.write(func(d *state) {
		id = d.id()
		d.salesOrders[id] = model.SalesOrder{
			BaseModel:  model.BaseModel{ID: id, CreatedAt: s.now(), UpdatedAt: s.now()},
			OrderNo:    orderNo,
			CustomerID: customerID,
			Status:     model.SOAwaitingReservation,
		}
	})
	return id
}

func (s *Store) AddOrderItem(salesOrderID, productID, quantity int64) int64 {
	var id int64
	s.write(func(d *state) {
		id = d.id()
		d.orderItems[id] = model.SalesOrderItem{
			BaseModel:    model.BaseModel{ID: id, CreatedAt: s.now(), UpdatedAt: s.now()},
			SalesOrderID: salesOrderID,
			ProductID:    productID,
			Quantity:     quantity,
		}
	})
	return id
}

// Inspection helpers

func (s *Store) Product(id int64) model.Product {
	var p model.Product
	s.read(func(d *state) { p = d.products[id] })
	return p
}

func (s *Store) SalesOrder(id int64) model.SalesOrder {
	var so model.SalesOrder
	s.read(func(d *state) { so = d.salesOrders[id] })
	return so
}

func (s *Store) Reservation(id int64) model.Reservation {
	var r model.Reservation
	s.read(func(d *state) { r = d.reservations[id] })
	return r
}

// ReservationsOf returns every reservation row of a sales order by id.
func (s *Store) ReservationsOf(salesOrderID int64) []model.Reservation {
	var out []model.Reservation
	s.read(func(d *state) {
		for _, r := range d.reservations {
			if r.SalesOrderID == salesOrderID {
				out = append(out, r)
			}
		}
	})
	slices.SortFunc(out, func(a, b model.Reservation) int { return cmpID(a.ID, b.ID) })
	return out
}

func (s *Store) Movements(productID int64) []model.StockMovement {
	var out []model.StockMovement
	s.read(func(d *state) {
		for _, m := range d.movements {
			if m.ProductID == productID {
				out = append(out, m)
			}
		}
	})
	return out
}

func (s *Store) DeliveredQuantity(itemID int64) int64 {
	var n int64
	s.read(func(d *state) {
		for _, it := range d.dnItems {
			if it.SalesOrderItemID == itemID {
				n += it.QuantityDelivered
			}
		}
	})
	return n
}

func (s *Store) Invoice(id int64) model.Invoice {
	var inv model.Invoice
	s.read(func(d *state) { inv = d.invoices[id] })
	return inv
}

func (s *Store) Pair(id int64) model.DocPair {
	var p model.DocPair
	s.read(func(d *state) { p = d.pairs[id] })
	return p
}

func (s *Store) PairCount() int {
	var n int
	s.read(func(d *state) { n = len(d.pairs) })
	return n
}

func (s *Store) PurchaseOrderItem(id int64) model.PurchaseOrderItem {
	var it model.PurchaseOrderItem
	s.read(func(d *state) { it = d.poItems[id] })
	return it
}

func cmpID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func page[T any](items []T, pageNo, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	start := (max(pageNo, 1) - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
