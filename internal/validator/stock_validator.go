package validator

import (
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/domain/model"
)

var (
	// 要求された色・サイズに合うバリアントが無い
	ErrVariantUnavailable = errors.New("variant unavailable")

	// 在庫切れ
	ErrOutOfStock = errors.New("out of stock")
)

// 在庫不足。Remainingをメッセージに載せてUIがそのまま出せるようにする。
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Remaining int64
}

func (e *InsufficientStockError) Error() string {
	if e.Remaining <= 0 {
		return "out of stock"
	}
	return fmt.Sprintf("only %d left in stock", e.Remaining)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// 要求された色・サイズに合うバリアントを探す。
// 保存側の色・サイズは値集合（カンマ区切り）のことがあるので「含まれていれば一致」。
// 要求側が空の軸はワイルドカード扱い。
func MatchVariant(variants []model.ProductVariant, color, size string) (model.ProductVariant, bool) {
	for _, v := range variants {
		if !dimensionMatches(v.ColorSet(), color) {
			continue
		}
		if !dimensionMatches(v.SizeSet(), size) {
			continue
		}
		return v, true
	}
	return model.ProductVariant{}, false
}

func dimensionMatches(stored []string, requested string) bool {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return true
	}
	for _, s := range stored {
		if strings.EqualFold(s, requested) {
			return true
		}
	}
	return false
}

// 商品スナップショットに対して要求数量が通るかを判定する純関数。
// バリアント指定があればバリアント在庫、無ければ商品在庫を見る。
// EffectivePriceは割引考慮後の請求単価。DiscountPriceは有効な割引
// （0 < discount <= price）のときだけ入る。
type StockCheckResult struct {
	UnitPrice      int64
	DiscountPrice  *int64
	EffectivePrice int64
	VariantID      *int64
	StoreID        int64
}

func ValidateStock(p model.Product, color, size string, qty int64) (StockCheckResult, error) {
	if qty < 1 {
		return StockCheckResult{}, errors.New("invalid quantity")
	}

	//バリアントを持つ商品はバリアントレベルで見る（未指定の軸はワイルドカード）
	if p.HasVariants() {
		v, ok := MatchVariant(p.Variants, color, size)
		if !ok {
			return StockCheckResult{}, ErrVariantUnavailable
		}
		if v.Stock < qty {
			return StockCheckResult{}, &InsufficientStockError{
				ProductID: p.ID,
				Requested: qty,
				Remaining: v.Stock,
			}
		}
		id := v.ID
		return StockCheckResult{
			UnitPrice:      v.Price,
			DiscountPrice:  validDiscount(v.DiscountPrice, v.Price),
			EffectivePrice: v.EffectivePrice(),
			VariantID:      &id,
			StoreID:        p.StoreID,
		}, nil
	}

	//バリアント無し商品
	if p.Stock < qty {
		return StockCheckResult{}, &InsufficientStockError{
			ProductID: p.ID,
			Requested: qty,
			Remaining: p.Stock,
		}
	}
	return StockCheckResult{
		UnitPrice:      p.Price,
		DiscountPrice:  validDiscount(p.DiscountPrice, p.Price),
		EffectivePrice: p.EffectivePrice(),
		StoreID:        p.StoreID,
	}, nil
}

// 割引単価は 0 < discount <= price のときだけ有効。壊れた行（割引が通常価格超え）は無視する。
func validDiscount(dp *int64, price int64) *int64 {
	if dp == nil || *dp <= 0 || *dp > price {
		return nil
	}
	return dp
}
