package model

import "time"

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusProcessing      OrderStatus = "PROCESSING"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusReturned        OrderStatus = "RETURNED"
	OrderStatusReturnRequested OrderStatus = "RETURN_REQUESTED"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

type OrderChannel string

const (
	OrderChannelWebsite OrderChannel = "WEBSITE"
	OrderChannelApp     OrderChannel = "APP"
)

// 注文。
// order_numberは人間向けの注文番号（主キーとは別）。
// total_amountは常にサーバー側で明細合計＋送料から計算する。
type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"type:varchar(60);not null;uniqueIndex" json:"order_number"`
	ShopperID   int64  `gorm:"not null;index" json:"shopper_id"`

	//この注文を発送する店舗
	StoreID         int64 `gorm:"not null;index" json:"store_id"`
	PaymentMethodID int64 `gorm:"not null" json:"payment_method_id"`

	DeliveryMethod string `gorm:"type:varchar(100)" json:"delivery_method"`

	//配送先
	ShippingName       string `gorm:"type:varchar(255);not null" json:"shipping_name"`
	ShippingPhone      string `gorm:"type:varchar(30)" json:"shipping_phone"`
	ShippingAddress    string `gorm:"type:varchar(500);not null" json:"shipping_address"`
	ShippingCity       string `gorm:"type:varchar(100)" json:"shipping_city"`
	ShippingPostalCode string `gorm:"type:varchar(20)" json:"shipping_postal_code"`

	DeliveryCharge int64 `gorm:"not null;default:0" json:"delivery_charge"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Channel       OrderChannel  `gorm:"type:varchar(20);not null;default:'WEBSITE'" json:"channel"`

	//確定時に実際に保存された明細数。明細のINSERTと同じトランザクションで更新する。
	LineCount int64 `gorm:"not null;default:0" json:"line_count"`

	OrderDate    time.Time  `gorm:"not null" json:"order_date"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`

	//配送トラッキング
	TrackingNumber string `gorm:"type:varchar(100)" json:"tracking_number"`
	TrackingURL    string `gorm:"type:varchar(500)" json:"tracking_url"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
