package repository

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// カート明細を一覧取得（更新が新しい順）
func (r *CartLineGormRepository) ListByShopper(ctx context.Context, shopperID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("shopper_id = ?", shopperID).
		Order("updated_at desc").
		Order("id desc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// 同じ (shopper, product, variant_key) は数量加算、無ければ新規作成。
// 加算はSQL側のアトミックなインクリメントで行い、total_priceは行が持つ
// スナップショット単価で再計算する（新しいカタログ価格では上書きしない）。
func (r *CartLineGormRepository) Upsert(ctx context.Context, line model.CartLine) error {
	if line.Quantity <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("shopper_id = ? AND product_id = ? AND variant_key = ?",
				line.ShopperID, line.ProductID, line.VariantKey).
			First(&existing).Error

		if err == nil {
			res := tx.Model(&model.CartLine{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"quantity":    gorm.Expr("quantity + ?", line.Quantity),
					"total_price": gorm.Expr("unit_price * (quantity + ?)", line.Quantity),
					"updated_at":  time.Now(),
				})

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		now := time.Now()
		line.TotalPrice = line.UnitPrice * line.Quantity
		line.CreatedAt = now
		line.UpdatedAt = now

		if err := tx.Create(&line).Error; err != nil {
			return err
		}

		return nil
	})
}

// 明細を取得（所有者の明細のみ）
func (r *CartLineGormRepository) FindByID(ctx context.Context, shopperID int64, lineID int64) (model.CartLine, error) {
	var line model.CartLine

	err := r.db.WithContext(ctx).
		Where("id = ? AND shopper_id = ?", lineID, shopperID).
		First(&line).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartLine{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartLine{}, err
	}
	return line, nil
}

// 明細の数量を更新。total_priceは行のスナップショット単価から再計算する。
func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, shopperID int64, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ? AND shopper_id = ?", lineID, shopperID).
		Updates(map[string]interface{}{
			"quantity":    qty,
			"total_price": gorm.Expr("unit_price * ?", qty),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除（所有者の明細のみ）
func (r *CartLineGormRepository) DeleteByID(ctx context.Context, shopperID int64, lineID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND shopper_id = ?", lineID, shopperID).
		Delete(&model.CartLine{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カート全消し（注文確定後にも呼ばれる）
func (r *CartLineGormRepository) Clear(ctx context.Context, shopperID int64) error {
	return r.db.WithContext(ctx).
		Where("shopper_id = ?", shopperID).
		Delete(&model.CartLine{}).Error
}
