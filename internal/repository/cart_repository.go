package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

// カート本体と明細の永続化。
// 明細の変更はすべて単一のアトミックなストア操作として実装すること
// （アプリ側のread-modify-writeで更新を潰さないため）。
type CartRepository interface {
	//ユーザーのカートを取得し、無ければ作成（user_idのユニーク制約で競合しても1つに収束）
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//ユーザーのカートを取得（無ければErrNotFound）
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)

	ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量加算（INSERT ... ON CONFLICT ... quantity + excluded.quantity）
	AddItem(ctx context.Context, cartID int64, productID int64, qty int64) error
	// 明細が無ければErrNotFound（新規作成はしない）
	SetQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error
	// 無ければno-op
	RemoveItem(ctx context.Context, cartID int64, productID int64) error
	// 全明細削除（冪等）
	Clear(ctx context.Context, cartID int64) error
}
