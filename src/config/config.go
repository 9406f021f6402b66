package config

import (
	"fmt"
	"os"
	"strconv"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	BUY_ORDER_PREFIX         = "MR"
	DEFAULT_MIN_DONATION_CLP = 500
)

// MinDonationCLP returns the minimum accepted donation in whole pesos.
func MinDonationCLP() int64 {
	raw := os.Getenv("DONATION_MIN_CLP")
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return DEFAULT_MIN_DONATION_CLP
	}
	return v
}

// ReturnURL is the merchant URL Webpay redirects the browser back to.
func ReturnURL() string {
	return os.Getenv("TBK_RETURN_URL")
}
