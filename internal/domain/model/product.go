package model

import (
	"time"

	"gorm.io/gorm"
)

// カタログ側の商品。
// バリアントが1つも無い商品は stock / price を商品自身が持つ。
// バリアントがある商品は在庫・価格チェックをバリアント側で行う。
type Product struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID       int64  `gorm:"not null;index" json:"store_id"`
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	Price         int64  `gorm:"not null" json:"price"`
	DiscountPrice *int64 `gorm:"column:discount_price" json:"discount_price,omitempty"`
	Stock         int64  `gorm:"not null" json:"stock"`
	ThumbnailURL  string `gorm:"type:varchar(500)" json:"thumbnail_url"`
	IsActive      bool   `gorm:"not null;default:false" json:"is_active"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 割引があれば割引後、無ければ通常価格。
func (p Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice <= p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}
