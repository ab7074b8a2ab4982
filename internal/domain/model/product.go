package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カタログ側が管理する商品。注文エンジンからは在庫カウンタ以外は読み取り専用。
type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	StockQuantity int64           `gorm:"not null;default:0" json:"stock_quantity"`
	Unit          string          `gorm:"type:varchar(50)" json:"unit"`
	HSNCode       string          `gorm:"column:hsn_code;type:varchar(20)" json:"hsn_code"`
	//未設定ならnull（0%扱い）
	GSTRate   *decimal.Decimal `gorm:"column:gst_rate;type:numeric(5,2)" json:"gst_rate"`
	IsActive  bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
