// Package importer moves the data a station kept in browser local storage
// into the shared database.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/storedesk/storedesk/internal/application/importer/dto"
	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/domain/setting"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// Snapshot keys.
const (
	KeyProducts          = "productData"
	KeyCategories        = "categories"
	KeyMembers           = "membersData"
	KeyEmployees         = "employees"
	KeySales             = "salesHistory"
	KeyCoupons           = "couponsData"
	KeySuppliers         = "suppliersData"
	KeyLastReceiptNumber = "lastReceiptNumber"
)

type kind int

const (
	kindCatalogue kind = iota
	kindEmployees
	kindSales
)

type dataset struct {
	name  string
	key   string
	table string
	kind  kind
}

// datasets are imported in this order.
var datasets = []dataset{
	{name: "products", key: KeyProducts, table: "products", kind: kindCatalogue},
	{name: "categories", key: KeyCategories, table: "categories", kind: kindCatalogue},
	{name: "members", key: KeyMembers, table: "members", kind: kindCatalogue},
	{name: "employees", key: KeyEmployees, kind: kindEmployees},
	{name: "sales", key: KeySales, kind: kindSales},
	{name: "coupons", key: KeyCoupons, table: "coupons", kind: kindCatalogue},
	{name: "suppliers", key: KeySuppliers, table: "suppliers", kind: kindCatalogue},
}

// Importer reads a local storage snapshot file and writes each dataset
// through the inventory repository.
type Importer struct {
	path        string
	inventory   inventory.Repository
	settings    setting.Repository
	defaultRole string
	mu          sync.Mutex
	logger      logger.Interface
}

func NewImporter(
	snapshotPath string,
	inventory inventory.Repository,
	settings setting.Repository,
	defaultRole string,
	log logger.Interface,
) *Importer {
	return &Importer{
		path:        snapshotPath,
		inventory:   inventory,
		settings:    settings,
		defaultRole: defaultRole,
		logger:      log,
	}
}

func (i *Importer) Path() string {
	return i.path
}

// Check lists the datasets present in the snapshot with their sizes.
func (i *Importer) Check(ctx context.Context) ([]dto.DatasetPresence, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap, err := readSnapshot(i.path)
	if err != nil {
		return nil, err
	}
	var present []dto.DatasetPresence
	for _, ds := range datasets {
		items, ok, err := snap.entries(ds.key)
		if err != nil {
			i.logger.Warnw("unreadable dataset in snapshot", "dataset", ds.name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		present = append(present, dto.DatasetPresence{Dataset: ds.name, Key: ds.key, Count: len(items)})
	}
	return present, nil
}

// ImportAll imports every dataset. A dataset failure is reported in its
// result and does not stop the others.
func (i *Importer) ImportAll(ctx context.Context) (*dto.ImportSummary, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap, err := readSnapshot(i.path)
	if err != nil {
		return nil, err
	}

	summary := &dto.ImportSummary{Results: make([]*dto.DatasetResult, 0, len(datasets))}
	succeeded := 0
	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var result *dto.DatasetResult
		switch ds.kind {
		case kindEmployees:
			result = i.importEmployees(ctx, snap, ds)
		case kindSales:
			result = i.importSales(ctx, snap, ds)
		default:
			result = i.importCatalogue(ctx, snap, ds)
		}
		if result.Success {
			succeeded++
		}
		summary.Results = append(summary.Results, result)
	}

	summary.Success = succeeded == len(datasets)
	summary.Summary = fmt.Sprintf("%d/%d succeeded", succeeded, len(datasets))
	i.logger.Infow("local data import finished", "summary", summary.Summary)
	return summary, nil
}

func (i *Importer) importCatalogue(ctx context.Context, snap snapshot, ds dataset) *dto.DatasetResult {
	items, ok, err := snap.entries(ds.key)
	if err != nil {
		return failed(ds, err)
	}
	if !ok {
		return &dto.DatasetResult{Dataset: ds.name, Success: true, Message: "nothing to import"}
	}
	if len(items) == 0 {
		return &dto.DatasetResult{Dataset: ds.name, Success: true, Message: "dataset is empty"}
	}

	records := make([]inventory.Record, len(items))
	for n, item := range items {
		records[n] = inventory.Record{LegacyKey: item.key, Payload: item.payload}
	}
	migrated, err := i.inventory.InsertRecords(ctx, ds.table, records)
	if err != nil {
		i.logger.Errorw("catalogue import failed", "dataset", ds.name, "error", err)
		return failed(ds, err)
	}
	return &dto.DatasetResult{
		Dataset:  ds.name,
		Success:  true,
		Migrated: migrated,
		Total:    len(items),
		Message:  fmt.Sprintf("imported %d %s", migrated, ds.name),
	}
}

// localEmployee is the employee shape kept by older stations.
type localEmployee struct {
	EmployeeNo  string   `json:"employee_id"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Position    string   `json:"position"`
	Permissions []string `json:"permissions"`
}

func (i *Importer) importEmployees(ctx context.Context, snap snapshot, ds dataset) *dto.DatasetResult {
	items, ok, err := snap.entries(ds.key)
	if err != nil {
		return failed(ds, err)
	}
	if !ok {
		return &dto.DatasetResult{Dataset: ds.name, Success: true, Message: "nothing to import"}
	}
	if len(items) == 0 {
		return &dto.DatasetResult{Dataset: ds.name, Success: true, Message: "dataset is empty"}
	}

	employees := make([]*employee.Employee, 0, len(items))
	for _, item := range items {
		var le localEmployee
		if err := json.Unmarshal(item.payload, &le); err != nil {
			return failed(ds, fmt.Errorf("employee %s: %w", item.key, err))
		}
		role := le.Role
		if role == "" {
			role = le.Position
		}
		employees = append(employees, employee.Normalize(&employee.Employee{
			EmployeeNo:  strings.TrimSpace(le.EmployeeNo),
			Username:    strings.TrimSpace(le.Username),
			Name:        le.Name,
			Role:        role,
			Permissions: le.Permissions,
		}, item.key, i.defaultRole))
	}

	migrated, err := i.inventory.UpsertEmployees(ctx, employees)
	if err != nil {
		i.logger.Errorw("employee import failed", "error", err)
		return failed(ds, err)
	}
	return &dto.DatasetResult{
		Dataset:  ds.name,
		Success:  true,
		Migrated: migrated,
		Total:    len(items),
		Message:  fmt.Sprintf("imported %d employees", migrated),
	}
}

// importSales inserts receipts one at a time so that a bad receipt only
// fails itself.
func (i *Importer) importSales(ctx context.Context, snap snapshot, ds dataset) *dto.DatasetResult {
	items, ok, err := snap.entries(ds.key)
	if err != nil {
		return failed(ds, err)
	}
	if !ok {
		return &dto.DatasetResult{Dataset: ds.name, Success: true, Message: "nothing to import"}
	}

	result := &dto.DatasetResult{Dataset: ds.name, Total: len(items)}
	for _, item := range items {
		var sale inventory.Sale
		if err := json.Unmarshal(item.payload, &sale); err != nil {
			result.Errors = append(result.Errors, dto.SaleError{ReceiptNumber: item.key, Error: err.Error()})
			continue
		}
		if err := i.inventory.InsertSale(ctx, sale.WithDefaults()); err != nil {
			i.logger.Warnw("sale import failed", "receipt_number", sale.ReceiptNumber, "error", err)
			result.Errors = append(result.Errors, dto.SaleError{ReceiptNumber: sale.ReceiptNumber, Error: err.Error()})
			continue
		}
		result.Migrated++
	}

	if result.Migrated > 0 {
		i.saveReceiptCounter(ctx, snap)
	}

	result.Success = len(result.Errors) == 0
	result.Message = fmt.Sprintf("imported %d of %d sales", result.Migrated, result.Total)
	if !result.Success {
		result.Message += fmt.Sprintf(", %d failed", len(result.Errors))
	}
	return result
}

func (i *Importer) saveReceiptCounter(ctx context.Context, snap snapshot) {
	raw, ok, err := snap.value(KeyLastReceiptNumber)
	if err != nil || !ok {
		return
	}
	var value string
	if json.Unmarshal(raw, &value) != nil {
		value = string(raw)
	}
	if err := i.settings.Set(ctx, setting.LastReceiptNumber, value); err != nil {
		i.logger.Warnw("failed to store receipt counter", "error", err)
	}
}

// ClearLocal removes the imported keys and the receipt counter from the
// snapshot. Unrelated keys are kept.
func (i *Importer) ClearLocal(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap, err := readSnapshot(i.path)
	if err != nil {
		return err
	}
	removed := 0
	for _, ds := range datasets {
		if _, ok := snap[ds.key]; ok {
			delete(snap, ds.key)
			removed++
		}
	}
	if _, ok := snap[KeyLastReceiptNumber]; ok {
		delete(snap, KeyLastReceiptNumber)
		removed++
	}
	if removed == 0 {
		return nil
	}
	if err := writeSnapshot(i.path, snap); err != nil {
		return err
	}
	i.logger.Infow("local data cleared", "keys_removed", removed)
	return nil
}

func failed(ds dataset, err error) *dto.DatasetResult {
	return &dto.DatasetResult{Dataset: ds.name, Success: false, Message: err.Error()}
}
