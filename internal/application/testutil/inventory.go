package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/shared/errors"
)

// Inventory records imported data in memory. TableErrs fails inserts into
// the named tables; FailReceipts fails individual sales.
type Inventory struct {
	mu        sync.Mutex
	Records   map[string][]inventory.Record
	Sales     []inventory.Sale
	Employees []*employee.Employee

	stored map[string][]*inventory.StoredRecord
	nextID int

	TableErrs    map[string]error
	FailReceipts map[string]error
	EmployeesErr error
}

var _ inventory.Repository = (*Inventory)(nil)

func NewInventory() *Inventory {
	return &Inventory{
		Records:      make(map[string][]inventory.Record),
		stored:       make(map[string][]*inventory.StoredRecord),
		TableErrs:    make(map[string]error),
		FailReceipts: make(map[string]error),
	}
}

func (i *Inventory) InsertRecords(ctx context.Context, table string, records []inventory.Record) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.TableErrs[table]; err != nil {
		return 0, err
	}
	i.Records[table] = append(i.Records[table], records...)
	for _, rec := range records {
		i.store(table, rec)
	}
	return len(records), nil
}

func (i *Inventory) store(table string, rec inventory.Record) *inventory.StoredRecord {
	i.nextID++
	stored := &inventory.StoredRecord{
		ID:         fmt.Sprintf("rec-%d", i.nextID),
		LegacyKey:  rec.LegacyKey,
		Payload:    rec.Payload,
		ImportedAt: time.Now(),
	}
	i.stored[table] = append(i.stored[table], stored)
	return stored
}

func (i *Inventory) find(table, id string) (int, error) {
	if !inventory.IsCatalogueTable(table) {
		return -1, errors.NewValidationError(fmt.Sprintf("unknown catalogue table %q", table))
	}
	for n, rec := range i.stored[table] {
		if rec.ID == id {
			return n, nil
		}
	}
	return -1, errors.NewNotFoundError(table+": record not found", id)
}

func (i *Inventory) ListRecords(ctx context.Context, table, legacyKey string) ([]*inventory.StoredRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !inventory.IsCatalogueTable(table) {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown catalogue table %q", table))
	}
	result := make([]*inventory.StoredRecord, 0, len(i.stored[table]))
	for _, rec := range i.stored[table] {
		if legacyKey == "" || rec.LegacyKey == legacyKey {
			cp := *rec
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (i *Inventory) GetRecord(ctx context.Context, table, id string) (*inventory.StoredRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	n, err := i.find(table, id)
	if err != nil {
		return nil, err
	}
	cp := *i.stored[table][n]
	return &cp, nil
}

func (i *Inventory) CreateRecord(ctx context.Context, table string, record inventory.Record) (*inventory.StoredRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !inventory.IsCatalogueTable(table) {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown catalogue table %q", table))
	}
	if err := i.TableErrs[table]; err != nil {
		return nil, err
	}
	cp := *i.store(table, record)
	return &cp, nil
}

func (i *Inventory) UpdateRecord(ctx context.Context, table, id string, payload json.RawMessage) (*inventory.StoredRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	n, err := i.find(table, id)
	if err != nil {
		return nil, err
	}
	i.stored[table][n].Payload = payload
	cp := *i.stored[table][n]
	return &cp, nil
}

func (i *Inventory) DeleteRecord(ctx context.Context, table, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	n, err := i.find(table, id)
	if err != nil {
		return err
	}
	i.stored[table] = append(i.stored[table][:n], i.stored[table][n+1:]...)
	return nil
}

func (i *Inventory) ListSales(ctx context.Context) ([]*inventory.Sale, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	result := make([]*inventory.Sale, len(i.Sales))
	for n := range i.Sales {
		s := i.Sales[n].WithDefaults()
		result[n] = &s
	}
	return result, nil
}

func (i *Inventory) saleIndex(receipt string) (int, error) {
	for n, s := range i.Sales {
		if s.ReceiptNumber == receipt {
			return n, nil
		}
	}
	return -1, errors.NewNotFoundError("sale: record not found", receipt)
}

func (i *Inventory) GetSale(ctx context.Context, receiptNumber string) (*inventory.Sale, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	n, err := i.saleIndex(receiptNumber)
	if err != nil {
		return nil, err
	}
	s := i.Sales[n].WithDefaults()
	return &s, nil
}

func (i *Inventory) UpdateSale(ctx context.Context, sale inventory.Sale) (*inventory.Sale, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	n, err := i.saleIndex(sale.ReceiptNumber)
	if err != nil {
		return nil, err
	}
	i.Sales[n] = sale.WithDefaults()
	s := i.Sales[n]
	return &s, nil
}

func (i *Inventory) DeleteSale(ctx context.Context, receiptNumber string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	n, err := i.saleIndex(receiptNumber)
	if err != nil {
		return err
	}
	i.Sales = append(i.Sales[:n], i.Sales[n+1:]...)
	return nil
}

func (i *Inventory) InsertSale(ctx context.Context, sale inventory.Sale) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.FailReceipts[sale.ReceiptNumber]; err != nil {
		return err
	}
	for _, s := range i.Sales {
		if s.ReceiptNumber == sale.ReceiptNumber {
			return errors.NewConflictError("insert sale: duplicate key", sale.ReceiptNumber)
		}
	}
	i.Sales = append(i.Sales, sale)
	return nil
}

func (i *Inventory) UpsertEmployees(ctx context.Context, employees []*employee.Employee) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.EmployeesErr != nil {
		return 0, i.EmployeesErr
	}
	i.Employees = append(i.Employees, employees...)
	return len(employees), nil
}

// Settings is an in-memory setting.Repository.
type Settings struct {
	mu     sync.Mutex
	values map[string]string
	SetErr error
}

func NewSettings() *Settings {
	return &Settings{values: make(map[string]string)}
}

func (s *Settings) Get(ctx context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok, nil
}

func (s *Settings) Set(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.values[name] = value
	return nil
}
