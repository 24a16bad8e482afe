package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type PaymentMethodGormRepository struct {
	db *gorm.DB
}

func NewPaymentMethodGormRepository(db *gorm.DB) *PaymentMethodGormRepository {
	return &PaymentMethodGormRepository{db: db}
}

func (r *PaymentMethodGormRepository) FindByID(ctx context.Context, id int64) (model.PaymentMethod, error) {
	var pm model.PaymentMethod

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentMethod{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PaymentMethod{}, err
	}
	return pm, nil
}

// 名前の部分一致（大文字小文字を無視）。代引きフォールバックの検索用。
func (r *PaymentMethodGormRepository) FindByNameLike(ctx context.Context, name string) (model.PaymentMethod, error) {
	var pm model.PaymentMethod

	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+name+"%").
		Order("id asc").
		First(&pm).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentMethod{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PaymentMethod{}, err
	}
	return pm, nil
}

func (r *PaymentMethodGormRepository) Create(ctx context.Context, pm model.PaymentMethod) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&pm).Error; err != nil {
		return 0, err
	}
	return pm.ID, nil
}
