package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORS проставляет Access-Control-Allow-Origin: * на каждом ответе.
// Preflight-запросы обрабатываются отдельными OPTIONS-маршрутами (Preflight),
// потому что контракт требует статус 200, а не echo-шный 204.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
			return next(c)
		}
	}
}

// Preflight возвращает обработчик OPTIONS с набором методов и заголовков
// конкретного эндпоинта. Ответ: 200, пустое тело, без обращений к БД.
func Preflight(allowMethods, allowHeaders string) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		h.Set(echo.HeaderAccessControlAllowMethods, allowMethods)
		h.Set(echo.HeaderAccessControlAllowHeaders, allowHeaders)
		h.Set("Access-Control-Max-Age", "86400")
		return c.NoContent(http.StatusOK)
	}
}
