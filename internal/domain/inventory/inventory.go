// Package inventory describes the catalogue and sales data imported from a
// station's local storage.
package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
)

// Catalogue tables. Each holds opaque JSON records.
const (
	TableProducts   = "products"
	TableCategories = "categories"
	TableMembers    = "members"
	TableCoupons    = "coupons"
	TableSuppliers  = "suppliers"
)

var catalogueTables = []string{TableProducts, TableCategories, TableMembers, TableCoupons, TableSuppliers}

// CatalogueTables returns the catalogue table names.
func CatalogueTables() []string {
	return append([]string(nil), catalogueTables...)
}

func IsCatalogueTable(name string) bool {
	for _, t := range catalogueTables {
		if t == name {
			return true
		}
	}
	return false
}

// Record is one catalogue entry stored as an opaque JSON payload.
type Record struct {
	LegacyKey string
	Payload   json.RawMessage
}

// StoredRecord is a catalogue record as held by the shared store.
type StoredRecord struct {
	ID         string          `json:"id"`
	LegacyKey  string          `json:"legacyKey,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	ImportedAt time.Time       `json:"importedAt"`
}

// Sale is a completed receipt. Amounts are in the store currency.
type Sale struct {
	ReceiptNumber  string          `json:"receiptNumber"`
	Date           string          `json:"date"`
	Items          json.RawMessage `json:"items"`
	Subtotal       float64         `json:"subtotal"`
	MemberDiscount *float64        `json:"memberDiscount"`
	CouponDiscount *float64        `json:"couponDiscount"`
	Tax            *float64        `json:"tax"`
	Total          float64         `json:"total"`
	PaymentMethod  string          `json:"paymentMethod"`
	ReceivedAmount *float64        `json:"receivedAmount"`
	Change         *float64        `json:"change"`
	Cashier        string          `json:"cashier"`
	Member         json.RawMessage `json:"member"`
	Coupon         json.RawMessage `json:"coupon"`
}

// WithDefaults fills missing discounts, tax and change with zero and a
// missing received amount with the total.
func (s Sale) WithDefaults() Sale {
	zero := func(p *float64) *float64 {
		if p == nil {
			v := 0.0
			return &v
		}
		return p
	}
	s.MemberDiscount = zero(s.MemberDiscount)
	s.CouponDiscount = zero(s.CouponDiscount)
	s.Tax = zero(s.Tax)
	s.Change = zero(s.Change)
	if s.ReceivedAmount == nil || *s.ReceivedAmount == 0 {
		total := s.Total
		s.ReceivedAmount = &total
	}
	return s
}

// Repository reads and writes the catalogue and sales tables. Sales are
// addressed by receipt number.
type Repository interface {
	InsertRecords(ctx context.Context, table string, records []Record) (int, error)
	InsertSale(ctx context.Context, sale Sale) error
	UpsertEmployees(ctx context.Context, employees []*employee.Employee) (int, error)

	ListRecords(ctx context.Context, table, legacyKey string) ([]*StoredRecord, error)
	GetRecord(ctx context.Context, table, id string) (*StoredRecord, error)
	CreateRecord(ctx context.Context, table string, record Record) (*StoredRecord, error)
	UpdateRecord(ctx context.Context, table, id string, payload json.RawMessage) (*StoredRecord, error)
	DeleteRecord(ctx context.Context, table, id string) error

	ListSales(ctx context.Context) ([]*Sale, error)
	GetSale(ctx context.Context, receiptNumber string) (*Sale, error)
	UpdateSale(ctx context.Context, sale Sale) (*Sale, error)
	DeleteSale(ctx context.Context, receiptNumber string) error
}
