package repository

import (
	"context"
	"errors"

	"shopapi/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Category string
	Sort     string
}

// カテゴリ一覧の1行（代表画像つき）
type CategorySummary struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	ListCategories(ctx context.Context) ([]CategorySummary, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
}
