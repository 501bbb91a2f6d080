package server

import (
	"shopapi/internal/config"
	"shopapi/internal/handler"

	"github.com/labstack/echo/v4"
)

// 全ハンドラのルートを登録する。
func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	wishlistH *handler.WishlistHandler,
	orderH *handler.OrderHandler,
	adminH *handler.AdminProductHandler,
) {
	authH.RegisterRoutes(e, cfg)
	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e, cfg)
	wishlistH.RegisterRoutes(e, cfg)
	orderH.RegisterRoutes(e, cfg)
	adminH.RegisterRoutes(e, cfg)

	//アップロードした画像の静的配信
	e.Static(cfg.UploadBaseURL, cfg.UploadDir)
}
