package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type PaymentMethodRepository interface {
	FindByID(ctx context.Context, id int64) (model.PaymentMethod, error)

	//名前の部分一致（大文字小文字を無視）で探す。代引きフォールバック用。
	FindByNameLike(ctx context.Context, name string) (model.PaymentMethod, error)

	Create(ctx context.Context, pm model.PaymentMethod) (int64, error)
}
