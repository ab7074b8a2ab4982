package model

import "github.com/shopspring/decimal"

// Weight / Pack など
type Attribute struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

// 属性の値（250 gm など）。同じ属性の商品間で共有される。
type AttributeTerm struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	AttributeID   int64            `gorm:"not null;index" json:"attribute_id"`
	Name          string           `gorm:"type:varchar(100);not null" json:"name"`
	QuantityValue *decimal.Decimal `gorm:"type:numeric(12,3)" json:"quantity_value"`
	Unit          *string          `gorm:"type:varchar(20)" json:"unit"`

	Attribute *Attribute `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE" json:"-"`
}
