// Package response renders the service's JSON bodies.
// The field names follow the public contract of the original API: errors are
// {"msg": ...}, except the refresh endpoint which answers {"message": ...}.
package response

import (
	"github.com/labstack/echo/v4"
)

// Msg writes a bare {"msg": ...} body with the given status.
func Msg(c echo.Context, statusCode int, msg string) error {
	return c.JSON(statusCode, echo.Map{"msg": msg})
}

// Error writes an error body with the given status.
func Error(c echo.Context, statusCode int, msg string) error {
	return Msg(c, statusCode, msg)
}

// Unauthorized writes the refresh endpoint's {"message": "Unauthorized"} body.
func Unauthorized(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, echo.Map{"message": "Unauthorized"})
}
