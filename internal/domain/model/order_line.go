package model

import "time"

// 注文明細。親注文と同じトランザクションでのみ作成され、以後単独で変更しない。
// total_priceは quantity × (discount_price ?? unit_price)。サーバー側で必ず再計算する。
type OrderLine struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//この明細を発送する店舗（マルチベンダーなので明細ごとに持つ）
	StoreID int64 `gorm:"not null;index" json:"store_id"`

	ProductName   string `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity      int64  `gorm:"not null" json:"quantity"`
	UnitPrice     int64  `gorm:"not null" json:"unit_price"`
	DiscountPrice *int64 `gorm:"column:discount_price" json:"discount_price,omitempty"`
	TotalPrice    int64  `gorm:"not null" json:"total_price"`

	Color string `gorm:"type:varchar(50)" json:"color"`
	Size  string `gorm:"type:varchar(50)" json:"size"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
