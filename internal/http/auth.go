package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/DrkBotBase/delivery/internal/http/controller"
	"github.com/DrkBotBase/delivery/pkg/token"
)

// OwnerAuth resolves the owner from the bearer token. Requests without a
// valid token stop here with 401.
func OwnerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {

			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			owner, err := token.Parse(secret, strings.TrimSpace(raw))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid bearer token")
			}

			ctx.Set(controller.OwnerKey, owner)
			return next(ctx)
		}
	}
}
