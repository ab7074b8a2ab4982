package testutil

import (
	"testing"

	"rushivan/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	HoneyID        int64 = 12 // バリエーションなし、GST未設定
	GheeID         int64 = 3  // バリエーションあり、GST 12%
	Ghee500ID      int64 = 57 // GheeIDの 500 gm
	TurmericID     int64 = 7  // 在庫1、GST 5%
	JaggeryID      int64 = 5  // 非公開
	OtherVariation int64 = 58 // Turmericのバリエーション
	CustomerID     int64 = 42
)

type Catalog struct {
	Honey    model.Product
	Ghee     model.Product
	Ghee500  model.ProductVariation
	Turmeric model.Product
	Jaggery  model.Product
	Customer model.Customer
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

func StrPtr(s string) *string {
	return &s
}

func Int64Ptr(v int64) *int64 {
	return &v
}

func SeedCatalog(t *testing.T, gdb *gorm.DB) Catalog {
	t.Helper()

	weight := model.Attribute{ID: 1, Name: "Weight"}
	require.NoError(t, gdb.Create(&weight).Error)
	gm500 := model.AttributeTerm{ID: 1, AttributeID: weight.ID, Name: "500 gm", QuantityValue: DecPtr("500"), Unit: StrPtr("gm")}
	gm250 := model.AttributeTerm{ID: 2, AttributeID: weight.ID, Name: "250 gm", QuantityValue: DecPtr("250"), Unit: StrPtr("gm")}
	require.NoError(t, gdb.Create(&gm500).Error)
	require.NoError(t, gdb.Create(&gm250).Error)

	c := Catalog{
		Honey: model.Product{
			ID: HoneyID, Name: "Forest Honey", Price: Dec("65"), StockQuantity: 10,
			Unit: "jar", HSNCode: "0409", IsActive: true,
		},
		Ghee: model.Product{
			ID: GheeID, Name: "A2 Cow Ghee", Price: Dec("900"), StockQuantity: 20,
			Unit: "jar", HSNCode: "0405", GSTRate: DecPtr("12"), IsActive: true,
		},
		Turmeric: model.Product{
			ID: TurmericID, Name: "Turmeric Powder", Price: Dec("120"), StockQuantity: 1,
			Unit: "pack", HSNCode: "0910", GSTRate: DecPtr("5"), IsActive: true,
		},
		Jaggery: model.Product{
			ID: JaggeryID, Name: "Jaggery", Price: Dec("40"), StockQuantity: 10,
			Unit: "kg", IsActive: true,
		},
		Customer: model.Customer{ID: CustomerID, Name: "Asha", Email: "asha@example.com", Phone: "9800000000"},
	}
	for _, p := range []*model.Product{&c.Honey, &c.Ghee, &c.Turmeric, &c.Jaggery} {
		require.NoError(t, gdb.Create(p).Error)
	}
	// is_activeはdefault:trueなのでfalseは後から更新する
	require.NoError(t, gdb.Model(&model.Product{}).Where("id = ?", JaggeryID).Update("is_active", false).Error)
	c.Jaggery.IsActive = false

	c.Ghee500 = model.ProductVariation{
		ID: Ghee500ID, ProductID: GheeID, AttributeID: weight.ID, TermID: gm500.ID,
		VariationValue: "500 gm", Price: Dec("480"), Stock: 5, SKU: StrPtr("GHEE-500"),
	}
	require.NoError(t, gdb.Create(&c.Ghee500).Error)

	other := model.ProductVariation{
		ID: OtherVariation, ProductID: TurmericID, AttributeID: weight.ID, TermID: gm250.ID,
		VariationValue: "250 gm", Price: Dec("70"), Stock: 3,
	}
	require.NoError(t, gdb.Create(&other).Error)

	require.NoError(t, gdb.Create(&c.Customer).Error)
	return c
}

func ProductStock(t *testing.T, gdb *gorm.DB, id int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, gdb.First(&p, id).Error)
	return p.StockQuantity
}

func VariationStock(t *testing.T, gdb *gorm.DB, id int64) int64 {
	t.Helper()
	var v model.ProductVariation
	require.NoError(t, gdb.First(&v, id).Error)
	return v.Stock
}

func CountRows(t *testing.T, gdb *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(m).Count(&n).Error)
	return n
}
