package usecase

import (
	"context"
	"net/http"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

// WishlistUsecase は /wishlist の業務ロジックです。
// 追加は集合セマンティクス（2回呼んでも結果は1件のまま）。
type WishlistUsecase struct {
	wishlistRepo repo.WishlistRepository
	productRepo  repo.ProductRepository
}

func NewWishlistUsecase(
	wishlistRepo repo.WishlistRepository,
	productRepo repo.ProductRepository,
) *WishlistUsecase {
	return &WishlistUsecase{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

type WishlistResponse struct {
	Products []model.Product `json:"products"`
}

// ウィッシュリスト取得。無ければ空を返す（エラーにしない）。
func (u *WishlistUsecase) Get(ctx context.Context, userID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	wl, err := u.wishlistRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return WishlistResponse{Products: []model.Product{}}, nil
	}
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildResponse(ctx, wl.ID)
}

// 集合への追加（冪等）。初回呼び出しでウィッシュリストを遅延作成する。
func (u *WishlistUsecase) AddProduct(ctx context.Context, userID int64, productID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	//商品チェック
	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	wl, err := u.wishlistRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.wishlistRepo.AddProduct(ctx, wl.ID, productID); err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildResponse(ctx, wl.ID)
}

// 集合からの削除（冪等）。ウィッシュリスト自体が無くても空リストを返すだけ。
func (u *WishlistUsecase) RemoveProduct(ctx context.Context, userID int64, productID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	wl, err := u.wishlistRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return WishlistResponse{Products: []model.Product{}}, nil
	}
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.wishlistRepo.RemoveProduct(ctx, wl.ID, productID); err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildResponse(ctx, wl.ID)
}

// 明細の商品を解決して返す。解決できない商品は除外する。
func (u *WishlistUsecase) buildResponse(ctx context.Context, wishlistID int64) (WishlistResponse, error) {
	items, err := u.wishlistRepo.ListItems(ctx, wishlistID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resolved := make([]model.Product, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		resolved = append(resolved, p)
	}

	return WishlistResponse{Products: resolved}, nil
}
