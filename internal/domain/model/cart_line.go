package model

import "time"

// カートの明細。
// (shopper_id, product_id, variant_key) につき1行だけ。同じ組み合わせの追加は数量加算。
// unit_price は追加時点のスナップショット。表示用フィールドは非正規化コピーで、金額計算には使わない。
type CartLine struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopperID  int64  `gorm:"not null;index;uniqueIndex:idx_cart_line_key" json:"shopper_id"`
	ProductID  int64  `gorm:"not null;uniqueIndex:idx_cart_line_key" json:"product_id"`
	VariantKey string `gorm:"type:varchar(120);not null;default:'';uniqueIndex:idx_cart_line_key" json:"variant_key"`

	Quantity  int64 `gorm:"not null" json:"quantity"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"`

	//quantity × unit_price。merge時はスナップショット価格で再計算する。
	TotalPrice int64 `gorm:"not null" json:"total_price"`

	//選択された色・サイズ（商品にバリアントが無ければ空）
	Color string `gorm:"type:varchar(50)" json:"color"`
	Size  string `gorm:"type:varchar(50)" json:"size"`

	//表示用
	ProductName  string `gorm:"type:varchar(255);not null" json:"product_name"`
	ThumbnailURL string `gorm:"type:varchar(500)" json:"thumbnail_url"`
	StoreName    string `gorm:"type:varchar(255)" json:"store_name"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 色とサイズからvariant_keyを作る（どちらも無ければ空文字）。
func VariantKey(color, size string) string {
	return color + size
}
