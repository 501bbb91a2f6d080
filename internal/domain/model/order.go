package model

import "time"

type OrderStatus string

// Pending → Shipped → Delivered、または Pending → Cancelled。
// 遷移自体は外部のフルフィルメント処理が行う。このコアは初期状態だけ保証する。
const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// 注文はチェックアウト時点のスナップショット。作成後は不変。
type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64       `gorm:"not null;index" json:"user_id"`
	TotalAmount     int64       `gorm:"not null" json:"total_amount"`
	ShippingAddress string      `gorm:"type:text;not null" json:"shipping_address"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
