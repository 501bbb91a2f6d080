package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

// ウィッシュリストの永続化。追加は集合セマンティクス（冪等）。
type WishlistRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error)
	FindByUserID(ctx context.Context, userID int64) (model.Wishlist, error)

	ListItems(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error)
	// 既にあればno-op（ON CONFLICT DO NOTHING）
	AddProduct(ctx context.Context, wishlistID int64, productID int64) error
	// 無ければno-op
	RemoveProduct(ctx context.Context, wishlistID int64, productID int64) error
}
