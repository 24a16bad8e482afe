package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type StoreRepository interface {
	FindByID(ctx context.Context, id int64) (model.Store, error)
}
