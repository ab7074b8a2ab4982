package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品のバリエーション。stockは商品のstock_quantityとは独立したカウンタ。
type ProductVariation struct {
	ID             int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      int64            `gorm:"not null;index" json:"product_id"`
	AttributeID    int64            `gorm:"not null;index" json:"attribute_id"`
	TermID         int64            `gorm:"not null;index" json:"term_id"`
	VariationValue string           `gorm:"type:varchar(100);not null" json:"variation_value"`
	QuantityValue  *decimal.Decimal `gorm:"type:numeric(12,3)" json:"quantity_value"`
	Unit           *string          `gorm:"type:varchar(20)" json:"unit"`
	Price          decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock          int64            `gorm:"not null;default:0" json:"stock"`
	SKU            *string          `gorm:"column:sku;type:varchar(100)" json:"sku"`
	CreatedAt      time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Product   *Product       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Attribute *Attribute     `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
	Term      *AttributeTerm `gorm:"foreignKey:TermID" json:"term,omitempty"`
}
