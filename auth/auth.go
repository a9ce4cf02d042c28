// Package auth hashes passwords and issues the signed session tokens kept
// in the browser cookie.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid session token")

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(key []byte, ttl time.Duration) *Tokens {
	return &Tokens{key: key, ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token naming userID that expires after the configured TTL.
func (t *Tokens) Issue(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     t.now().Add(t.ttl).Unix(),
	})
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Parse validates a token and returns the user id it carries.
func (t *Tokens) Parse(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}
