package model

import (
	"strings"
	"time"
)

// 商品バリアント（色・サイズの組み合わせごとの在庫と価格）。
// color / size は上流データが正規化されておらず、単一値のことも
// カンマ区切りの複数値のこともある。比較はColorSet / SizeSetを通す。
type ProductVariant struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64  `gorm:"not null;index" json:"product_id"`
	Color         string `gorm:"type:varchar(120)" json:"color"`
	Size          string `gorm:"type:varchar(120)" json:"size"`
	Stock         int64  `gorm:"not null" json:"stock"`
	Price         int64  `gorm:"not null" json:"price"`
	DiscountPrice *int64 `gorm:"column:discount_price" json:"discount_price,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (v ProductVariant) EffectivePrice() int64 {
	if v.DiscountPrice != nil && *v.DiscountPrice > 0 && *v.DiscountPrice <= v.Price {
		return *v.DiscountPrice
	}
	return v.Price
}

func (v ProductVariant) ColorSet() []string {
	return splitValueSet(v.Color)
}

func (v ProductVariant) SizeSet() []string {
	return splitValueSet(v.Size)
}

// カンマ区切りの値集合をばらす。空要素は捨てる。
func splitValueSet(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
