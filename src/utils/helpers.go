package utils

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"refugio/src/config"
	"refugio/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func GenerateJWT(email string, id uint) (string, error) {
	claims := types.Claims{
		Username: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}

// NewBuyOrder builds the merchant reference echoed back by the provider:
// <prefix>-<timestamp>-<random suffix>. Must stay globally unique.
func NewBuyOrder() string {
	return fmt.Sprintf("%s-%s-%s", config.BUY_ORDER_PREFIX, time.Now().Format("20060102150405"), randomHex(6))
}

func NewSessionID() string {
	return randomHex(12)
}

func randomHex(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// ParseAmountCLP parses a donation amount and rounds it half-up to whole
// pesos. The configured minimum is checked by the caller.
func ParseAmountCLP(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("amount is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	rounded := math.Floor(v + 0.5)
	if rounded <= 0 {
		return 0, errors.New("amount must be positive")
	}
	if rounded > math.MaxInt32 {
		return 0, fmt.Errorf("amount %q out of range", raw)
	}
	return int64(rounded), nil
}
