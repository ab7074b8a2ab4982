package model

type CounterKind string

const (
	CounterProduct   CounterKind = "product"
	CounterVariation CounterKind = "variation"
)

// どの在庫カウンタを減らすか
type StockCounter struct {
	Kind CounterKind
	ID   int64
}

// variationIDがnullか0以下なら商品のstock_quantity
func CounterFor(productID int64, variationID *int64) StockCounter {
	if variationID != nil && *variationID > 0 {
		return StockCounter{Kind: CounterVariation, ID: *variationID}
	}
	return StockCounter{Kind: CounterProduct, ID: productID}
}

func (c StockCounter) Table() string {
	if c.Kind == CounterVariation {
		return "product_variations"
	}
	return "products"
}

func (c StockCounter) Column() string {
	if c.Kind == CounterVariation {
		return "stock"
	}
	return "stock_quantity"
}
