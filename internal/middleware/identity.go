package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a stable identifier for the authenticated
// customer, used when building rate-limit keys.  Unauthenticated
// requests share the "anon" bucket.
func currentUserID(c echo.Context) string {
	switch v := c.Get("customer_id").(type) {
	case nil:
		return "anon"
	case string:
		if v != "" {
			return v
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	default:
		return "anon"
	}
}
