package middleware

import (
	"net/http"

	"shopapi/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AuthJWTの後段に置く。contextのroleがADMINでなければ拒否する。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || raw == "" {
				//AuthJWTを通っていない
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if model.Role(raw) != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
