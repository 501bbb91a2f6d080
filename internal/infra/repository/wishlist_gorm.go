package repository

import (
	"context"
	"errors"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistGormRepository struct {
	db *gorm.DB
}

// DI
func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

// ユーザーのウィッシュリストを取得し、無ければ作成
func (r *WishlistGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	wl := model.Wishlist{UserID: userID}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&wl).Error
	if err != nil {
		return model.Wishlist{}, err
	}

	if wl.ID == 0 {
		if err := r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			First(&wl).Error; err != nil {
			return model.Wishlist{}, err
		}
	}

	return wl, nil
}

// ユーザーのウィッシュリストを取得
func (r *WishlistGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	var wl model.Wishlist

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&wl).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Wishlist{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Wishlist{}, err
	}
	return wl, nil
}

// 明細を一覧取得
func (r *WishlistGormRepository) ListItems(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error) {
	var items []model.WishlistItem

	if err := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.WishlistItem{}, err
	}

	return items, nil
}

// 集合への追加（冪等）。既にあればON CONFLICT DO NOTHINGで何もしない。
func (r *WishlistGormRepository) AddProduct(ctx context.Context, wishlistID int64, productID int64) error {
	item := model.WishlistItem{
		WishlistID: wishlistID,
		ProductID:  productID,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wishlist_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item).Error
}

// 集合からの削除。無ければno-op。
func (r *WishlistGormRepository) RemoveProduct(ctx context.Context, wishlistID int64, productID int64) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{}).Error
}
