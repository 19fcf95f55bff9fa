package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth and RequestLog.
const (
	ctxOwnerID   = "owner_id"
	ctxRole      = "role"
	ctxRequestID = "request_id"
)

// OwnerID returns the authenticated cart owner, or "" when the request
// carried no valid token.
func OwnerID(c echo.Context) string {
	s, _ := c.Get(ctxOwnerID).(string)
	return s
}

// Role returns the role claim of the authenticated caller.
func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

// RequestID returns the id assigned by RequestLog.
func RequestID(c echo.Context) string {
	s, _ := c.Get(ctxRequestID).(string)
	return s
}

func ownerOrAnon(c echo.Context) string {
	if id := OwnerID(c); id != "" {
		return id
	}
	return "anon"
}
