package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"shopapi/internal/config"
	"shopapi/internal/middleware"
	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 画像は1商品あたり3枚まで
const maxProductImages = 3

// /admin 配下（商品アップロード）のHTTP
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/addproduct", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
}

// multipart/form-data: name, price, quantity, category + images（1〜3枚）
func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	name := c.FormValue("name")
	price, err := strconv.ParseInt(c.FormValue("price"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid price"})
	}
	quantity, err := strconv.ParseInt(c.FormValue("quantity"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid quantity"})
	}
	category := c.FormValue("category")

	images, closers, err := imagesFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
	}
	defer closeAll(closers)

	p, err := h.uc.AdminCreateProduct(
		c.Request().Context(),
		adminID,
		usecase.AdminCreateProductInput{
			Name:     name,
			Price:    price,
			Quantity: quantity,
			Category: category,
			Images:   images,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, p, "product added")
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid id"})
	}

	name := c.FormValue("name")
	price, err := strconv.ParseInt(c.FormValue("price"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid price"})
	}
	quantity, err := strconv.ParseInt(c.FormValue("quantity"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid quantity"})
	}
	category := c.FormValue("category")

	//更新では画像は任意（無ければ既存を維持）
	images, closers, _ := imagesFromForm(c)
	defer closeAll(closers)

	err = h.uc.AdminUpdateProduct(
		c.Request().Context(),
		adminID,
		id,
		usecase.AdminUpdateProductInput{
			Name:     name,
			Price:    price,
			Quantity: quantity,
			Category: category,
			Images:   images,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, nil, "product updated")
}

// multipartフォームから画像を取り出す。開いたファイルは呼び出し側がclosersで閉じる。
func imagesFromForm(c echo.Context) ([]usecase.ImageUpload, []multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil, nil
	}

	files := form.File["images"]
	if len(files) > maxProductImages {
		files = files[:maxProductImages]
	}

	images := make([]usecase.ImageUpload, 0, len(files))
	closers := make([]multipart.File, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, f)
		images = append(images, usecase.ImageUpload{
			Filename: fh.Filename,
			Reader:   f,
		})
	}

	return images, closers, nil
}

func closeAll(closers []multipart.File) {
	for _, f := range closers {
		f.Close()
	}
}
