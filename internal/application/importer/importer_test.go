package importer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedesk/storedesk/internal/application/testutil"
	"github.com/storedesk/storedesk/internal/domain/setting"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// localStorage wraps every value in a JSON string the way the browser
// stores it.
func localStorage(t *testing.T, values map[string]string) []byte {
	t.Helper()
	data, err := json.Marshal(values)
	require.NoError(t, err)
	return data
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "localstorage.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func fullSnapshot(t *testing.T) string {
	return writeFile(t, localStorage(t, map[string]string{
		KeyProducts:   `{"4710088412345":{"name":"Green tea","price":25},"4710088412346":{"name":"Black tea","price":25}}`,
		KeyCategories: `[{"id":"c1","name":"Drinks"},{"id":"c2","name":"Snacks"}]`,
		KeyMembers:    `{"m1":{"name":"Lin","points":10}}`,
		KeyEmployees:  `[{"employee_id":"E001","name":"Amy","position":"cashier","permissions":["sales"]},{"username":"bob","name":"Bob"}]`,
		KeySales: `[{"receiptNumber":"R-0001","date":"2026-10-01T10:00:00","items":[],"subtotal":50,"total":50,"paymentMethod":"cash"},
			{"receiptNumber":"R-0002","date":"2026-10-01T11:00:00","items":[],"subtotal":80,"total":75,"memberDiscount":5,"receivedAmount":100,"change":25,"paymentMethod":"cash"}]`,
		KeyCoupons:           `{}`,
		KeyLastReceiptNumber: `R-0002`,
		"theme":              `dark`,
	}))
}

func newImporter(path string) (*Importer, *testutil.Inventory, *testutil.Settings) {
	inv := testutil.NewInventory()
	settings := testutil.NewSettings()
	return NewImporter(path, inv, settings, "staff", logger.NewDiscard()), inv, settings
}

func TestImporter_Check(t *testing.T) {
	imp, _, _ := newImporter(fullSnapshot(t))

	present, err := imp.Check(context.Background())
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, p := range present {
		counts[p.Dataset] = p.Count
	}
	assert.Equal(t, map[string]int{
		"products":   2,
		"categories": 2,
		"members":    1,
		"employees":  2,
		"sales":      2,
		"coupons":    0,
	}, counts)
}

func TestImporter_CheckMissingSnapshot(t *testing.T) {
	imp, _, _ := newImporter(filepath.Join(t.TempDir(), "missing.json"))

	_, err := imp.Check(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestImporter_ImportAll(t *testing.T) {
	ctx := context.Background()
	imp, inv, settings := newImporter(fullSnapshot(t))

	summary, err := imp.ImportAll(ctx)
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, "7/7 succeeded", summary.Summary)
	require.Len(t, summary.Results, 7)

	byName := make(map[string]int)
	for _, r := range summary.Results {
		byName[r.Dataset] = r.Migrated
	}
	assert.Equal(t, 2, byName["products"])
	assert.Equal(t, 2, byName["categories"])
	assert.Equal(t, 1, byName["members"])
	assert.Equal(t, 2, byName["employees"])
	assert.Equal(t, 2, byName["sales"])
	assert.Zero(t, byName["coupons"])
	assert.Zero(t, byName["suppliers"])

	require.Len(t, inv.Records["products"], 2)
	assert.Equal(t, "4710088412345", inv.Records["products"][0].LegacyKey)
	assert.JSONEq(t, `{"name":"Green tea","price":25}`, string(inv.Records["products"][0].Payload))
	assert.Equal(t, "c1", inv.Records["categories"][0].LegacyKey)

	require.Len(t, inv.Employees, 2)
	assert.Equal(t, "E001", inv.Employees[0].EmployeeNo)
	assert.Equal(t, "cashier", inv.Employees[0].Role)
	assert.Equal(t, "bob", inv.Employees[1].EmployeeNo)
	assert.Equal(t, "staff", inv.Employees[1].Role)
	assert.Equal(t, []string{}, inv.Employees[1].Permissions)

	require.Len(t, inv.Sales, 2)
	first := inv.Sales[0]
	assert.Equal(t, 50.0, *first.ReceivedAmount)
	assert.Zero(t, *first.Change)
	assert.Zero(t, *first.Tax)
	second := inv.Sales[1]
	assert.Equal(t, 100.0, *second.ReceivedAmount)
	assert.Equal(t, 5.0, *second.MemberDiscount)

	counter, ok, err := settings.Get(ctx, setting.LastReceiptNumber)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "R-0002", counter)
}

func TestImporter_SalesPartialFailure(t *testing.T) {
	ctx := context.Background()
	imp, inv, settings := newImporter(fullSnapshot(t))
	inv.FailReceipts["R-0001"] = errors.NewTransientStoreError("insert sale", stderrors.New("timeout"))

	summary, err := imp.ImportAll(ctx)
	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.Equal(t, "6/7 succeeded", summary.Summary)

	sales := summary.Results[4]
	require.Equal(t, "sales", sales.Dataset)
	assert.False(t, sales.Success)
	assert.Equal(t, 1, sales.Migrated)
	assert.Equal(t, 2, sales.Total)
	require.Len(t, sales.Errors, 1)
	assert.Equal(t, "R-0001", sales.Errors[0].ReceiptNumber)

	_, ok, _ := settings.Get(ctx, setting.LastReceiptNumber)
	assert.True(t, ok)
}

func TestImporter_NoSalesImportedKeepsCounterUnset(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, localStorage(t, map[string]string{
		KeySales:             `[{"receiptNumber":"R-0001","total":10}]`,
		KeyLastReceiptNumber: `R-0001`,
	}))
	imp, inv, settings := newImporter(path)
	inv.FailReceipts["R-0001"] = stderrors.New("boom")

	_, err := imp.ImportAll(ctx)
	require.NoError(t, err)

	_, ok, _ := settings.Get(ctx, setting.LastReceiptNumber)
	assert.False(t, ok)
}

func TestImporter_CatalogueFailureIsIsolated(t *testing.T) {
	imp, inv, _ := newImporter(fullSnapshot(t))
	inv.TableErrs["products"] = errors.NewSchemaError("insert products", stderrors.New("no such table"))

	summary, err := imp.ImportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6/7 succeeded", summary.Summary)
	assert.False(t, summary.Results[0].Success)
	assert.NotEmpty(t, summary.Results[0].Message)
	assert.Len(t, inv.Records["categories"], 2)
}

func TestImporter_RawValues(t *testing.T) {
	path := writeFile(t, []byte(`{
		"productData": {"p1": {"name": "Water"}},
		"categories": null,
		"membersData": "",
		"suppliersData": "not json"
	}`))
	imp, inv, _ := newImporter(path)

	summary, err := imp.ImportAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, inv.Records["products"], 1)

	for _, r := range summary.Results {
		switch r.Dataset {
		case "suppliers":
			assert.False(t, r.Success)
		default:
			assert.True(t, r.Success, r.Dataset)
		}
	}
}

func TestImporter_MalformedSnapshot(t *testing.T) {
	imp, _, _ := newImporter(writeFile(t, []byte(`[1,2,3]`)))

	_, err := imp.ImportAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsMalformedLocalStateError(err))
}

func TestImporter_ClearLocal(t *testing.T) {
	path := fullSnapshot(t)
	imp, _, _ := newImporter(path)

	require.NoError(t, imp.ClearLocal(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var remaining map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &remaining))
	assert.Len(t, remaining, 1)
	assert.Contains(t, remaining, "theme")

	present, err := imp.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, present)

	require.NoError(t, imp.ClearLocal(context.Background()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
