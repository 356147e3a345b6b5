package entity

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of the console session token. TokenID keys the
// session record in Redis.
type Claims struct {
	UserID  string `json:"user_id"`
	Role    Role   `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}
