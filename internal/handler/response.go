package handler

import (
	"net/http"

	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全エンドポイント共通のレスポンス形。
// {success, response?, message?, error?}
type APIResponse struct {
	Success  bool        `json:"success"`
	Response interface{} `json:"response,omitempty"`
	Message  string      `json:"message,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func writeOK(c echo.Context, response interface{}, message string) error {
	return c.JSON(http.StatusOK, APIResponse{
		Success:  true,
		Response: response,
		Message:  message,
	})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, APIResponse{Success: false, Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, APIResponse{Success: false, Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, APIResponse{Success: false, Error: "unauthorized"})
}
