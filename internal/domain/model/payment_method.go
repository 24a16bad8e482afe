package model

import "time"

// 既定の支払い方法名。起動時プロビジョニングとチェックアウト時のフォールバック検索の両方で使う。
const DefaultPaymentMethodName = "Cash On Delivery"

type PaymentMethod struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
