package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appInventory "github.com/storedesk/storedesk/internal/application/inventory"
	appTestutil "github.com/storedesk/storedesk/internal/application/testutil"
	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/interfaces/http/handlers/testutil"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

func newInventoryHandler() *InventoryHandler {
	svc := appInventory.NewService(appTestutil.NewInventory(), logger.NewDiscard())
	return NewInventoryHandler(svc, logger.NewDiscard())
}

func TestInventoryHandler_Records(t *testing.T) {
	h := newInventoryHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/data/suppliers", map[string]any{
		"legacyKey": "S01",
		"payload":   map[string]any{"name": "Tea Farm", "phone": "02-1234"},
	})
	h.CreateRecord("suppliers")(c)
	require.Equal(t, http.StatusCreated, w.Code)
	var created inventory.StoredRecord
	_, err := testutil.DecodeData(w, &created)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	c, w = testutil.NewTestContext(http.MethodGet, "/api/data/suppliers?legacy_key=S01", nil)
	h.ListRecords("suppliers")(c)
	assert.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []inventory.StoredRecord `json:"items"`
		Total int                      `json:"total"`
	}
	_, err = testutil.DecodeData(w, &list)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	c, w = testutil.NewTestContext(http.MethodPut, "/api/data/suppliers/"+created.ID, map[string]any{
		"payload": map[string]any{"name": "Tea Farm Co."},
	})
	testutil.SetURLParam(c, "id", created.ID)
	h.UpdateRecord("suppliers")(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tea Farm Co.")

	c, w = testutil.NewTestContext(http.MethodPut, "/api/data/suppliers/"+created.ID, map[string]any{"payload": []int{1}})
	testutil.SetURLParam(c, "id", created.ID)
	h.UpdateRecord("suppliers")(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = testutil.NewTestContext(http.MethodDelete, "/api/data/suppliers/"+created.ID, nil)
	testutil.SetURLParam(c, "id", created.ID)
	h.DeleteRecord("suppliers")(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())

	c, w = testutil.NewTestContext(http.MethodGet, "/api/data/suppliers/"+created.ID, nil)
	testutil.SetURLParam(c, "id", created.ID)
	h.GetRecord("suppliers")(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventoryHandler_Sales(t *testing.T) {
	h := newInventoryHandler()

	body := `{"receiptNumber":"R0001","date":"2026-10-01T09:00:00","subtotal":50,"total":50,"paymentMethod":"cash","cashier":"Amy"}`
	c, w := testutil.NewTestContext(http.MethodPost, "/api/sales", body)
	h.RecordSale(c)
	require.Equal(t, http.StatusCreated, w.Code)

	c, w = testutil.NewTestContext(http.MethodPost, "/api/sales", body)
	h.RecordSale(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	c, w = testutil.NewTestContext(http.MethodGet, "/api/sales/R0001", nil)
	testutil.SetURLParam(c, "receipt", "R0001")
	h.GetSale(c)
	assert.Equal(t, http.StatusOK, w.Code)
	var sale inventory.Sale
	_, err := testutil.DecodeData(w, &sale)
	require.NoError(t, err)
	assert.Equal(t, 50.0, *sale.ReceivedAmount)

	c, w = testutil.NewTestContext(http.MethodPut, "/api/sales/R0001", `{"subtotal":50,"total":50,"paymentMethod":"card"}`)
	testutil.SetURLParam(c, "receipt", "R0001")
	h.UpdateSale(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentMethod":"card"`)

	c, w = testutil.NewTestContext(http.MethodGet, "/api/sales", nil)
	h.ListSales(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	c, w = testutil.NewTestContext(http.MethodDelete, "/api/sales/R0001", nil)
	testutil.SetURLParam(c, "receipt", "R0001")
	h.DeleteSale(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())

	c, w = testutil.NewTestContext(http.MethodDelete, "/api/sales/R0001", nil)
	testutil.SetURLParam(c, "receipt", "R0001")
	h.DeleteSale(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
