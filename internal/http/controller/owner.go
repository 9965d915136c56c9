package controller

import (
	"github.com/labstack/echo/v4"
)

// OwnerKey is the echo context key holding the authenticated owner id.
const OwnerKey = "owner_id"

func ownerID(ctx echo.Context) string {
	owner, _ := ctx.Get(OwnerKey).(string)
	return owner
}
