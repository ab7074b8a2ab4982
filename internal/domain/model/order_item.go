package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。作成後は変更しない。
// カタログが後で変わっても読めるように表示用の値を丸ごとコピーしておく。
type OrderItem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64  `gorm:"not null;index" json:"order_id"`
	ProductID   *int64 `gorm:"index" json:"product_id"`
	VariationID *int64 `gorm:"index" json:"variation_id"`

	AttributeName  *string          `gorm:"type:varchar(100)" json:"attribute_name"`
	TermName       *string          `gorm:"type:varchar(100)" json:"term_name"`
	VariationValue *string          `gorm:"type:varchar(100)" json:"variation_value"`
	QuantityValue  *decimal.Decimal `gorm:"type:numeric(12,3)" json:"quantity_value"`
	Unit           *string          `gorm:"type:varchar(20)" json:"unit"`
	SKU            *string          `gorm:"column:sku;type:varchar(100)" json:"sku"`
	ProductName    string           `gorm:"type:varchar(255);not null" json:"product_name"`

	Quantity          int64           `gorm:"not null" json:"quantity"`
	UnitPrice         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	DeclaredUnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"declared_unit_price"`
	LineTotal         decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null" json:"total_price"`
	GSTRate           decimal.Decimal `gorm:"column:gst_rate;type:numeric(5,2);not null;default:0" json:"gst_rate"`
	GSTAmount         decimal.Decimal `gorm:"column:gst_amount;type:numeric(12,2);not null;default:0" json:"gst_amount"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	Order     *Order            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	Product   *Product          `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`
	Variation *ProductVariation `gorm:"foreignKey:VariationID;constraint:OnDelete:SET NULL" json:"-"`
}
