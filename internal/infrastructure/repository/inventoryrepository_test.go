package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
	"github.com/storedesk/storedesk/internal/shared/errors"
)

func TestInventoryRepository_InsertRecords(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewInventoryRepository(db)

	n, err := repo.InsertRecords(ctx, models.TableProducts, []inventory.Record{
		{LegacyKey: "4710088412345", Payload: json.RawMessage(`{"name":"Green tea","price":25}`)},
		{LegacyKey: "4710088412346", Payload: json.RawMessage(`{"name":"Black tea","price":25}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rows []models.ImportedRecordModel
	require.NoError(t, db.Table(models.TableProducts).Order("legacy_key").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.JSONEq(t, `{"name":"Green tea","price":25}`, string(rows[0].Payload))
	assert.False(t, rows[0].ImportedAt.IsZero())

	n, err = repo.InsertRecords(ctx, models.TableMembers, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.InsertRecords(ctx, "employee_sessions", []inventory.Record{{Payload: json.RawMessage(`{}`)}})
	assert.Error(t, err)
}

func TestInventoryRepository_InsertSale(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewInventoryRepository(db)

	var sale inventory.Sale
	require.NoError(t, json.Unmarshal([]byte(`{
		"receiptNumber": "R20261001-0001",
		"date": "2026-10-01T10:00:00",
		"items": [{"barcode":"4710088412345","qty":2}],
		"subtotal": 50, "total": 50, "paymentMethod": "cash", "cashier": "Amy"
	}`), &sale))

	require.NoError(t, repo.InsertSale(ctx, sale))

	var row models.SaleModel
	require.NoError(t, db.Where("receipt_number = ?", "R20261001-0001").First(&row).Error)
	assert.Equal(t, 50.0, row.ReceivedAmount)
	assert.Zero(t, row.ChangeAmount)
	assert.Zero(t, row.Tax)
	assert.Nil(t, row.Member)

	err := repo.InsertSale(ctx, sale)
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

func TestInventoryRepository_UpsertEmployees(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewInventoryRepository(db)

	n, err := repo.UpsertEmployees(ctx, []*employee.Employee{
		{EmployeeNo: "E001", Name: "Amy", Role: "cashier", Permissions: []string{"sales"}},
		{EmployeeNo: "E002", Name: "Ken", Role: "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.UpsertEmployees(ctx, []*employee.Employee{
		{EmployeeNo: "E001", Name: "Amy Chen", Role: "manager", Permissions: []string{"all"}},
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.EmployeeModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	amy, err := NewEmployeeRepository(db).GetByEmployeeNo(ctx, "E001")
	require.NoError(t, err)
	assert.Equal(t, "Amy Chen", amy.Name)
	assert.Equal(t, "manager", amy.Role)
	assert.Equal(t, []string{"all"}, amy.Permissions)
}

func TestAppSettingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAppSettingRepository(setupTestDB(t))

	_, found, err := repo.Get(ctx, "lastReceiptNumber")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, "lastReceiptNumber", "R0041"))
	require.NoError(t, repo.Set(ctx, "lastReceiptNumber", "R0042"))

	v, found, err := repo.Get(ctx, "lastReceiptNumber")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "R0042", v)
}

func TestInventoryRepository_RecordCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository(setupTestDB(t))

	created, err := repo.CreateRecord(ctx, models.TableMembers, inventory.Record{
		LegacyKey: "M001",
		Payload:   json.RawMessage(`{"name":"Lin","points":10}`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	_, err = repo.InsertRecords(ctx, models.TableMembers, []inventory.Record{
		{LegacyKey: "M002", Payload: json.RawMessage(`{"name":"Wu","points":0}`)},
	})
	require.NoError(t, err)

	all, err := repo.ListRecords(ctx, models.TableMembers, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byKey, err := repo.ListRecords(ctx, models.TableMembers, "M001")
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	assert.Equal(t, created.ID, byKey[0].ID)

	got, err := repo.GetRecord(ctx, models.TableMembers, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "M001", got.LegacyKey)
	assert.JSONEq(t, `{"name":"Lin","points":10}`, string(got.Payload))

	updated, err := repo.UpdateRecord(ctx, models.TableMembers, created.ID, json.RawMessage(`{"name":"Lin","points":25}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Lin","points":25}`, string(updated.Payload))
	assert.Equal(t, "M001", updated.LegacyKey)

	// Same payload again still succeeds.
	_, err = repo.UpdateRecord(ctx, models.TableMembers, created.ID, json.RawMessage(`{"name":"Lin","points":25}`))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRecord(ctx, models.TableMembers, created.ID))
	_, err = repo.GetRecord(ctx, models.TableMembers, created.ID)
	assert.True(t, errors.IsNotFoundError(err))

	err = repo.DeleteRecord(ctx, models.TableMembers, created.ID)
	assert.True(t, errors.IsNotFoundError(err))
	_, err = repo.UpdateRecord(ctx, models.TableMembers, "missing", json.RawMessage(`{}`))
	assert.True(t, errors.IsNotFoundError(err))

	// Tables are isolated from each other.
	products, err := repo.ListRecords(ctx, models.TableProducts, "")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestInventoryRepository_RejectsUnknownTable(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository(setupTestDB(t))

	_, err := repo.ListRecords(ctx, "employees", "")
	assert.True(t, errors.IsValidationError(err))
	_, err = repo.GetRecord(ctx, "sales", "x")
	assert.True(t, errors.IsValidationError(err))
	_, err = repo.CreateRecord(ctx, "app_settings", inventory.Record{Payload: json.RawMessage(`{}`)})
	assert.True(t, errors.IsValidationError(err))
	_, err = repo.UpdateRecord(ctx, "employee_sessions", "x", json.RawMessage(`{}`))
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, errors.IsValidationError(repo.DeleteRecord(ctx, "employee_sessions", "x")))
}

func TestInventoryRepository_SaleCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository(setupTestDB(t))

	for _, raw := range []string{
		`{"receiptNumber":"R0001","date":"2026-10-01T09:00:00","subtotal":50,"total":50,"paymentMethod":"cash","cashier":"Amy"}`,
		`{"receiptNumber":"R0002","date":"2026-10-02T09:00:00","subtotal":80,"total":80,"receivedAmount":100,"change":20,"paymentMethod":"cash","cashier":"Ken","member":{"id":"M001"}}`,
	} {
		var sale inventory.Sale
		require.NoError(t, json.Unmarshal([]byte(raw), &sale))
		require.NoError(t, repo.InsertSale(ctx, sale))
	}

	sales, err := repo.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "R0002", sales[0].ReceiptNumber)
	assert.Equal(t, 20.0, *sales[0].Change)
	assert.JSONEq(t, `{"id":"M001"}`, string(sales[0].Member))

	got, err := repo.GetSale(ctx, "R0001")
	require.NoError(t, err)
	assert.Equal(t, 50.0, *got.ReceivedAmount)
	assert.Equal(t, "Amy", got.Cashier)

	edit := *got
	edit.PaymentMethod = "card"
	edit.Tax = nil
	updated, err := repo.UpdateSale(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "card", updated.PaymentMethod)
	assert.Equal(t, 0.0, *updated.Tax)
	assert.Equal(t, "2026-10-01T09:00:00", updated.Date)

	_, err = repo.UpdateSale(ctx, inventory.Sale{ReceiptNumber: "R9999", Total: 1})
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, repo.DeleteSale(ctx, "R0001"))
	_, err = repo.GetSale(ctx, "R0001")
	assert.True(t, errors.IsNotFoundError(err))
	assert.True(t, errors.IsNotFoundError(repo.DeleteSale(ctx, "R0001")))

	sales, err = repo.ListSales(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}
