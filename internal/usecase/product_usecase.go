package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	"shopapi/internal/infra/upload"
	"shopapi/internal/logger"
	repo "shopapi/internal/repository"

	"go.uber.org/zap"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	uploader    upload.Uploader
	tx          repo.TransactionManager
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	uploader upload.Uploader,
	tx repo.TransactionManager,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		uploader:    uploader,
		tx:          tx,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Category string
	Sort     string
}

type ProductListOutput struct {
	Items       []model.Product `json:"items"`
	CurrentPage int             `json:"current_page"`
	TotalPages  int             `json:"total_pages"`
	TotalItems  int64           `json:"total_items"`
}

// 一覧取得。該当0件のページは404扱い（システムエラーの500とは区別する）。
func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch in.Sort {
	case "", "new", "asc", "desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Category: strings.TrimSpace(in.Category),
		Sort:     in.Sort,
	})
	if err != nil {
		logger.L().Error("list products failed", zap.Error(err))
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if len(items) == 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusNotFound, "no products found for this criteria")
	}

	totalPages := int((total + int64(in.Limit) - 1) / int64(in.Limit))

	return ProductListOutput{
		Items:       items,
		CurrentPage: in.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
	}, nil
}

// カテゴリ一覧（名前昇順、代表画像つき）
func (u *ProductUsecase) ListCategories(ctx context.Context) ([]repo.CategorySummary, error) {
	rows, err := u.productRepo.ListCategories(ctx)
	if err != nil {
		logger.L().Error("list categories failed", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rows, nil
}

// 商品詳細
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return p, nil
}

// アップロードする画像1枚分
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

type AdminCreateProductInput struct {
	Name     string
	Price    int64
	Quantity int64
	Category string
	Images   []ImageUpload
}

// 商品作成（管理者のみ）。
// 画像アップロードが1枚でも失敗したら商品は作らない。
func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminCreateProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Quantity < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}
	if strings.TrimSpace(in.Category) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "category required")
	}
	if len(in.Images) == 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "at least one image is required")
	}

	//先に全画像をアップロードする（失敗したら商品は作らず、上げた分は消す）
	urls := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		url, err := u.uploader.Upload(ctx, img.Filename, img.Reader)
		if err != nil {
			logger.L().Error("image upload failed",
				zap.String("filename", img.Filename),
				zap.Error(err),
			)
			u.removeUploads(ctx, urls)
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "image upload failed")
		}
		urls = append(urls, url)
	}

	now := time.Now()

	//商品と監査ログは同一トランザクション。
	//監査ログが書けなければ商品作成ごとロールバックする（中途半端な状態を残さない）。
	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:      strings.TrimSpace(in.Name),
			Price:     in.Price,
			Quantity:  in.Quantity,
			Category:  strings.TrimSpace(in.Category),
			Images:    urls,
			OwnerID:   adminUserID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			logger.L().Error("create product failed", zap.Error(err))
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		afterJSON := fmt.Sprintf(`{"name":%q,"price":%d,"quantity":%d,"category":%q}`,
			p.Name, p.Price, p.Quantity, p.Category)
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionCreateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			logger.L().Error("audit log failed", zap.Int64("product_id", p.ID), zap.Error(err))
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created = p
		return nil
	})
	if err != nil {
		u.removeUploads(ctx, urls)
		return model.Product{}, err
	}

	return created, nil
}

// DB側が失敗したときのアップロード済みファイル掃除（ベストエフォート）
func (u *ProductUsecase) removeUploads(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := u.uploader.Remove(ctx, url); err != nil {
			logger.L().Warn("orphan upload cleanup failed", zap.String("url", url), zap.Error(err))
		}
	}
}

type AdminUpdateProductInput struct {
	Name     string
	Price    int64
	Quantity int64
	Category string
	Images   []ImageUpload //空なら既存画像を維持
}

// 商品更新（管理者のみ）
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminUpdateProductInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Quantity < 0 {
		return NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "category required")
	}

	existing, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	images := []string(existing.Images)
	var newUploads []string
	if len(in.Images) > 0 {
		urls := make([]string, 0, len(in.Images))
		for _, img := range in.Images {
			url, err := u.uploader.Upload(ctx, img.Filename, img.Reader)
			if err != nil {
				logger.L().Error("image upload failed",
					zap.String("filename", img.Filename),
					zap.Error(err),
				)
				u.removeUploads(ctx, urls)
				return NewHTTPError(http.StatusInternalServerError, "image upload failed")
			}
			urls = append(urls, url)
		}
		images = urls
		newUploads = urls
	}

	//更新と監査ログも作成時と同じく同一トランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().Update(ctx, model.Product{
			ID:       productID,
			Name:     strings.TrimSpace(in.Name),
			Price:    in.Price,
			Quantity: in.Quantity,
			Category: strings.TrimSpace(in.Category),
			Images:   images,
		})
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		afterJSON := fmt.Sprintf(`{"name":%q,"price":%d,"quantity":%d,"category":%q}`,
			in.Name, in.Price, in.Quantity, in.Category)
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			logger.L().Error("audit log failed", zap.Int64("product_id", productID), zap.Error(err))
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
	if err != nil {
		u.removeUploads(ctx, newUploads)
		return err
	}

	return nil
}
