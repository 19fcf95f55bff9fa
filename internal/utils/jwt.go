// Package utils holds token helpers shared by handlers and tests.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the "role" claim.  Guests get a token from the cart
// session endpoint; customer tokens are issued by the account service with
// the same secret.
const (
	RoleGuest    = "GUEST"
	RoleCustomer = "CUSTOMER"
)

// AccessToken is a signed bearer token and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs an HS256 JWT with sub, role, iat and exp claims.
func NewAccessToken(secret, subject, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
