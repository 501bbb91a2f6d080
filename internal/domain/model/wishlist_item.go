package model

import "time"

// ウィッシュリストは商品の集合。
// 同じ商品は1回だけ（wishlist_id, product_id のユニーク制約で集合扱い）。
type WishlistItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WishlistID int64     `gorm:"not null;uniqueIndex:idx_wishlist_items_list_product" json:"wishlist_id"`
	ProductID  int64     `gorm:"not null;uniqueIndex:idx_wishlist_items_list_product" json:"product_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
