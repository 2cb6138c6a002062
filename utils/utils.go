package utils

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// TokenTTL: срок жизни токена организатора.
const TokenTTL = 24 * time.Hour

const claimUserID = "user_id"

var ErrInvalidToken = errors.New("invalid or expired token")

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}

// GenerateJWT выпускает HS256-токен с id организатора.
func GenerateJWT(secret []byte, organizerID int, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		claimUserID: organizerID,
		"exp":       now.Add(TokenTTL).Unix(),
		"iat":       now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseJWT проверяет подпись и срок действия и возвращает claims.
func ParseJWT(secret []byte, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserIDFromClaims достаёт user_id из claims. JSON-числа приходят как float64.
func UserIDFromClaims(claims jwt.MapClaims) (int, error) {
	raw, ok := claims[claimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", claimUserID)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for '%s' claim: %T", claimUserID, raw)
	}
	if f != float64(int(f)) || f <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %v", claimUserID, f)
	}
	return int(f), nil
}
