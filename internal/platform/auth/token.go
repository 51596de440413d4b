package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer はログイン成功時にHS256のトークンを発行する。
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Secret() []byte { return i.secret }

func (i *Issuer) Issue(userID int64, name string, isAdmin bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10),
		"name":  name,
		"admin": isAdmin,
		"exp":   time.Now().Add(i.ttl).Unix(),
	})
	return token.SignedString(i.secret)
}
