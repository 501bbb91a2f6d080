package handler

import (
	"net/http"
	"strconv"

	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 1ページの件数は8で固定
const productPageSize = 8

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/productlist", h.list)
	e.GET("/categories", h.categories)
	e.GET("/productdetail/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid page"})
		}
		page = p
	}

	sort := c.QueryParam("sort")
	category := c.QueryParam("category")

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		Limit:    productPageSize,
		Category: category,
		Sort:     sort,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, out, "products fetched successfully")
}

func (h *ProductHandler) categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, out, "")
}

func (h *ProductHandler) detail(c echo.Context) error {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid id"})
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, p, "product detail fetched")
}
