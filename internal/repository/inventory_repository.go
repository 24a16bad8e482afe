package repository

import "context"

// 在庫の取り合いは条件付きUPDATEで直列化する。
// 足りなければ何も変えずfalseを返す。
type InventoryRepository interface {
	// バリアント無し商品の商品レベル在庫
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// バリアントレベル在庫
	DecreaseVariantStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
	IncreaseVariantStock(ctx context.Context, variantID int64, qty int64) error
}
