package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth validates an HS256 bearer token and stores its subject and role in
// the context.  Subjects are opaque strings: guest ids are UUIDs, customer
// ids come from the account service.
func JWTAuth(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	key := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			claims := jwt.MapClaims{}
			tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
				return key, nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			role, _ := claims["role"].(string)

			c.Set(ctxOwnerID, sub)
			c.Set(ctxRole, role)
			return next(c)
		}
	}
}
