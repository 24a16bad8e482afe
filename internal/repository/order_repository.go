package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page      int
	Limit     int
	Status    string
	ShopperID *int64
	StoreID   *int64
	From      *time.Time
	To        *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByShopper(ctx context.Context, shopperID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//明細INSERT後に実際の明細数を書き戻す（同一トランザクション内で呼ぶ）
	SetLineCount(ctx context.Context, orderID int64, count int64) error

	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//管理画面用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
