package usecase

import (
	"context"
	"errors"
	"fmt"

	"rushivan/internal/domain/model"
	repo "rushivan/internal/repository"

	"github.com/shopspring/decimal"
)

// 価格解決に必要なカタログの読み取り口（TxReposがそのまま満たす）
type CatalogReader interface {
	Products() repo.ProductRepository
	Variations() repo.VariationRepository
}

// 1明細ぶんのサーバー側価格と、明細に焼き込む表示用の値
type Quote struct {
	ProductID   int64
	VariationID *int64
	ProductName string
	Label       string
	UnitPrice   decimal.Decimal
	GSTRate     decimal.Decimal
	Counter     model.StockCounter

	AttributeName  *string
	TermName       *string
	VariationValue *string
	QuantityValue  *decimal.Decimal
	Unit           *string
	SKU            *string
}

// 商品（＋任意のバリエーション）から単価と在庫カウンタを決める。
// 書き込みはしない。同じカタログ状態なら同じ結果。
type PricingResolver struct{}

func NewPricingResolver() *PricingResolver {
	return &PricingResolver{}
}

func (p *PricingResolver) Resolve(ctx context.Context, catalog CatalogReader, productID int64, variationID *int64) (Quote, error) {
	product, err := catalog.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return Quote{}, fmt.Errorf("%w: id=%d", ErrProductNotFound, productID)
	}
	if err != nil {
		return Quote{}, err
	}
	//非公開商品は存在しない扱い
	if !product.IsActive {
		return Quote{}, fmt.Errorf("%w: id=%d inactive", ErrProductNotFound, productID)
	}

	gst := decimal.Zero
	if product.GSTRate != nil {
		gst = *product.GSTRate
	}

	counter := model.CounterFor(productID, variationID)
	if counter.Kind == model.CounterProduct {
		q := Quote{
			ProductID:   product.ID,
			ProductName: product.Name,
			Label:       product.Unit,
			UnitPrice:   product.Price,
			GSTRate:     gst,
			Counter:     counter,
		}
		if product.Unit != "" {
			unit := product.Unit
			q.Unit = &unit
		}
		return q, nil
	}

	v, err := catalog.Variations().FindByID(ctx, counter.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return Quote{}, fmt.Errorf("%w: id=%d", ErrVariationNotFound, counter.ID)
	}
	if err != nil {
		return Quote{}, err
	}
	if v.ProductID != productID {
		return Quote{}, fmt.Errorf("%w: variation=%d product=%d", ErrVariationMismatch, v.ID, productID)
	}

	vid := v.ID
	q := Quote{
		ProductID:     product.ID,
		VariationID:   &vid,
		ProductName:   product.Name,
		Label:         v.VariationValue,
		UnitPrice:     v.Price,
		GSTRate:       gst,
		Counter:       counter,
		QuantityValue: v.QuantityValue,
		Unit:          v.Unit,
		SKU:           v.SKU,
	}
	if v.VariationValue != "" {
		value := v.VariationValue
		q.VariationValue = &value
	}
	if v.Attribute != nil {
		name := v.Attribute.Name
		q.AttributeName = &name
	}
	if v.Term != nil {
		term := v.Term.Name
		q.TermName = &term
		if q.Label == "" {
			q.Label = term
		}
		//バリエーション側が空ならtermの値を使う
		if q.QuantityValue == nil {
			q.QuantityValue = v.Term.QuantityValue
		}
		if q.Unit == nil {
			q.Unit = v.Term.Unit
		}
	}
	return q, nil
}
