package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleWithDefaults(t *testing.T) {
	var s Sale
	require.NoError(t, json.Unmarshal([]byte(`{"receiptNumber":"R0001","total":120,"subtotal":120}`), &s))

	d := s.WithDefaults()
	assert.Equal(t, 0.0, *d.MemberDiscount)
	assert.Equal(t, 0.0, *d.CouponDiscount)
	assert.Equal(t, 0.0, *d.Tax)
	assert.Equal(t, 0.0, *d.Change)
	assert.Equal(t, 120.0, *d.ReceivedAmount)
	assert.Nil(t, s.Tax, "original left untouched")
}

func TestSaleWithDefaultsKeepsValues(t *testing.T) {
	var s Sale
	require.NoError(t, json.Unmarshal([]byte(`{"receiptNumber":"R2","total":80,"receivedAmount":100,"change":20,"tax":4}`), &s))

	d := s.WithDefaults()
	assert.Equal(t, 100.0, *d.ReceivedAmount)
	assert.Equal(t, 20.0, *d.Change)
	assert.Equal(t, 4.0, *d.Tax)
}

func TestIsCatalogueTable(t *testing.T) {
	for _, name := range CatalogueTables() {
		assert.True(t, IsCatalogueTable(name), name)
	}
	assert.False(t, IsCatalogueTable("sales"))
	assert.False(t, IsCatalogueTable("employee_sessions"))
	assert.Len(t, CatalogueTables(), 5)
}
