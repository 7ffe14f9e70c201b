package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/mappers"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/id"
)

const importBatchSize = 200

// InventoryRepository stores catalogue records and sales. Catalogue import
// batches are all-or-nothing per table.
type InventoryRepository struct {
	db     *gorm.DB
	mapper mappers.EmployeeMapper
}

func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &InventoryRepository{db: db, mapper: mappers.NewEmployeeMapper()}
}

func (r *InventoryRepository) InsertRecords(ctx context.Context, table string, records []inventory.Record) (int, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	now := biztime.Now()
	rows := make([]models.ImportedRecordModel, len(records))
	for i, rec := range records {
		rows[i] = models.ImportedRecordModel{
			ID:         id.NewRowID(),
			LegacyKey:  rec.LegacyKey,
			Payload:    datatypes.JSON(rec.Payload),
			ImportedAt: now,
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(table).CreateInBatches(&rows, importBatchSize).Error
	})
	if err != nil {
		return 0, classify("insert "+table, err)
	}
	return len(rows), nil
}

func (r *InventoryRepository) InsertSale(ctx context.Context, sale inventory.Sale) error {
	model := toSaleModel(sale)
	model.ID = id.NewRowID()
	model.ImportedAt = biztime.Now()
	return classify("insert sale", r.db.WithContext(ctx).Create(&model).Error)
}

func toSaleModel(sale inventory.Sale) models.SaleModel {
	s := sale.WithDefaults()
	return models.SaleModel{
		ReceiptNumber:  s.ReceiptNumber,
		SoldAt:         s.Date,
		Items:          jsonOrNil(s.Items),
		Subtotal:       s.Subtotal,
		MemberDiscount: *s.MemberDiscount,
		CouponDiscount: *s.CouponDiscount,
		Tax:            *s.Tax,
		Total:          s.Total,
		PaymentMethod:  s.PaymentMethod,
		ReceivedAmount: *s.ReceivedAmount,
		ChangeAmount:   *s.Change,
		Cashier:        s.Cashier,
		Member:         jsonOrNil(s.Member),
		Coupon:         jsonOrNil(s.Coupon),
	}
}

func toSale(m *models.SaleModel) *inventory.Sale {
	f := func(v float64) *float64 { return &v }
	return &inventory.Sale{
		ReceiptNumber:  m.ReceiptNumber,
		Date:           m.SoldAt,
		Items:          json.RawMessage(m.Items),
		Subtotal:       m.Subtotal,
		MemberDiscount: f(m.MemberDiscount),
		CouponDiscount: f(m.CouponDiscount),
		Tax:            f(m.Tax),
		Total:          m.Total,
		PaymentMethod:  m.PaymentMethod,
		ReceivedAmount: f(m.ReceivedAmount),
		Change:         f(m.ChangeAmount),
		Cashier:        m.Cashier,
		Member:         json.RawMessage(m.Member),
		Coupon:         json.RawMessage(m.Coupon),
	}
}

// UpsertEmployees inserts employees or refreshes rows sharing an employee_id.
func (r *InventoryRepository) UpsertEmployees(ctx context.Context, employees []*employee.Employee) (int, error) {
	if len(employees) == 0 {
		return 0, nil
	}
	rows := make([]*models.EmployeeModel, 0, len(employees))
	for _, e := range employees {
		m := r.mapper.ToModel(e)
		if m.ID == "" {
			m.ID = id.NewRowID()
		}
		rows = append(rows, m)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "name", "position", "permissions", "updated_at"}),
	}).CreateInBatches(rows, importBatchSize).Error
	if err != nil {
		return 0, classify("upsert employees", err)
	}
	return len(rows), nil
}

// ListRecords returns a table's records oldest first. A non-empty legacyKey
// narrows the result to that key.
func (r *InventoryRepository) ListRecords(ctx context.Context, table, legacyKey string) ([]*inventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Table(table)
	if legacyKey != "" {
		query = query.Where("legacy_key = ?", legacyKey)
	}
	var rows []models.ImportedRecordModel
	if err := query.Order("imported_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, classify("list "+table, err)
	}
	result := make([]*inventory.StoredRecord, len(rows))
	for i := range rows {
		result[i] = toStoredRecord(&rows[i])
	}
	return result, nil
}

func (r *InventoryRepository) GetRecord(ctx context.Context, table, recordID string) (*inventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	var row models.ImportedRecordModel
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", recordID).First(&row).Error; err != nil {
		return nil, classify("get "+table, err)
	}
	return toStoredRecord(&row), nil
}

func (r *InventoryRepository) CreateRecord(ctx context.Context, table string, record inventory.Record) (*inventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	row := models.ImportedRecordModel{
		ID:         id.NewRowID(),
		LegacyKey:  record.LegacyKey,
		Payload:    datatypes.JSON(record.Payload),
		ImportedAt: biztime.Now(),
	}
	if err := r.db.WithContext(ctx).Table(table).Create(&row).Error; err != nil {
		return nil, classify("create "+table, err)
	}
	return toStoredRecord(&row), nil
}

// UpdateRecord replaces a record's payload.
func (r *InventoryRepository) UpdateRecord(ctx context.Context, table, recordID string, payload json.RawMessage) (*inventory.StoredRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Table(table).
		Where("id = ?", recordID).
		Update("payload", datatypes.JSON(payload))
	if result.Error != nil {
		return nil, classify("update "+table, result.Error)
	}
	// Some drivers count only changed rows, so a missing row surfaces from
	// the read below.
	return r.GetRecord(ctx, table, recordID)
}

func (r *InventoryRepository) DeleteRecord(ctx context.Context, table, recordID string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Table(table).Where("id = ?", recordID).Delete(&models.ImportedRecordModel{})
	if result.Error != nil {
		return classify("delete "+table, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("delete "+table+": record not found", recordID)
	}
	return nil
}

// ListSales returns every sale, newest receipt first.
func (r *InventoryRepository) ListSales(ctx context.Context) ([]*inventory.Sale, error) {
	var rows []models.SaleModel
	if err := r.db.WithContext(ctx).Order("sold_at DESC, receipt_number DESC").Find(&rows).Error; err != nil {
		return nil, classify("list sales", err)
	}
	result := make([]*inventory.Sale, len(rows))
	for i := range rows {
		result[i] = toSale(&rows[i])
	}
	return result, nil
}

func (r *InventoryRepository) GetSale(ctx context.Context, receiptNumber string) (*inventory.Sale, error) {
	var row models.SaleModel
	if err := r.db.WithContext(ctx).Where("receipt_number = ?", receiptNumber).First(&row).Error; err != nil {
		return nil, classify("get sale", err)
	}
	return toSale(&row), nil
}

// UpdateSale overwrites the sale with the same receipt number. Missing
// amounts take the same defaults as an insert.
func (r *InventoryRepository) UpdateSale(ctx context.Context, sale inventory.Sale) (*inventory.Sale, error) {
	m := toSaleModel(sale)
	result := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("receipt_number = ?", sale.ReceiptNumber).
		Select("sold_at", "items", "subtotal", "member_discount", "coupon_discount", "tax", "total",
			"payment_method", "received_amount", "change_amount", "cashier", "member", "coupon").
		Updates(&m)
	if result.Error != nil {
		return nil, classify("update sale", result.Error)
	}
	return r.GetSale(ctx, sale.ReceiptNumber)
}

func (r *InventoryRepository) DeleteSale(ctx context.Context, receiptNumber string) error {
	result := r.db.WithContext(ctx).Where("receipt_number = ?", receiptNumber).Delete(&models.SaleModel{})
	if result.Error != nil {
		return classify("delete sale", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("delete sale: record not found", receiptNumber)
	}
	return nil
}

func checkTable(table string) error {
	if !inventory.IsCatalogueTable(table) {
		return errors.NewValidationError(fmt.Sprintf("unknown catalogue table %q", table))
	}
	return nil
}

func toStoredRecord(m *models.ImportedRecordModel) *inventory.StoredRecord {
	return &inventory.StoredRecord{
		ID:         m.ID,
		LegacyKey:  m.LegacyKey,
		Payload:    json.RawMessage(m.Payload),
		ImportedAt: m.ImportedAt,
	}
}

func jsonOrNil(raw []byte) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}
