package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/storedesk/storedesk/internal/domain/inventory"
)

// Tables holding imported catalogue records as opaque JSON payloads.
const (
	TableProducts   = inventory.TableProducts
	TableCategories = inventory.TableCategories
	TableMembers    = inventory.TableMembers
	TableCoupons    = inventory.TableCoupons
	TableSuppliers  = inventory.TableSuppliers
)

// ImportedRecordModel is the shared shape of the catalogue tables. Use it
// with db.Table(name).
type ImportedRecordModel struct {
	ID         string         `gorm:"primaryKey;size:36"`
	LegacyKey  string         `gorm:"column:legacy_key;size:128;index"`
	Payload    datatypes.JSON `gorm:"column:payload;not null"`
	ImportedAt time.Time      `gorm:"column:imported_at;not null"`
}

// SaleModel is a completed checkout receipt.
type SaleModel struct {
	ID             string         `gorm:"primaryKey;size:36"`
	ReceiptNumber  string         `gorm:"column:receipt_number;size:64;not null;uniqueIndex"`
	SoldAt         string         `gorm:"column:sold_at;size:64"`
	Items          datatypes.JSON `gorm:"column:items"`
	Subtotal       float64        `gorm:"column:subtotal"`
	MemberDiscount float64        `gorm:"column:member_discount"`
	CouponDiscount float64        `gorm:"column:coupon_discount"`
	Tax            float64        `gorm:"column:tax"`
	Total          float64        `gorm:"column:total"`
	PaymentMethod  string         `gorm:"column:payment_method;size:32"`
	ReceivedAmount float64        `gorm:"column:received_amount"`
	ChangeAmount   float64        `gorm:"column:change_amount"`
	Cashier        string         `gorm:"column:cashier;size:128"`
	Member         datatypes.JSON `gorm:"column:member"`
	Coupon         datatypes.JSON `gorm:"column:coupon"`
	ImportedAt     time.Time      `gorm:"column:imported_at;not null"`
}

func (SaleModel) TableName() string {
	return "sales"
}

// AppSettingModel is a key/value setting shared by all stations.
type AppSettingModel struct {
	Name      string    `gorm:"primaryKey;column:name;size:64"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (AppSettingModel) TableName() string {
	return "app_settings"
}
