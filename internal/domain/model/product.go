package model

import (
	"time"

	"github.com/lib/pq"
)

// 商品は管理者アップロードで作成され、削除はしない（管理者更新のみ）。
type Product struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Price     int64          `gorm:"not null" json:"price"`
	Quantity  int64          `gorm:"not null" json:"quantity"`
	Category  string         `gorm:"type:varchar(100);not null;index" json:"category"`
	Images    pq.StringArray `gorm:"type:text[]" json:"images"`
	OwnerID   int64          `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
