package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type CartLineRepository interface {
	//更新が新しい順
	ListByShopper(ctx context.Context, shopperID int64) ([]model.CartLine, error)

	// 同じ (shopper, product, variant_key) があれば数量加算、無ければ新規作成。
	// 加算時のtotal_priceは行が持つスナップショット価格で再計算する。
	Upsert(ctx context.Context, line model.CartLine) error

	FindByID(ctx context.Context, shopperID int64, lineID int64) (model.CartLine, error)
	UpdateQuantity(ctx context.Context, shopperID int64, lineID int64, qty int64) error
	DeleteByID(ctx context.Context, shopperID int64, lineID int64) error

	//注文確定後のカート全消し
	Clear(ctx context.Context, shopperID int64) error
}
