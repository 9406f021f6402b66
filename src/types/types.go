package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type DonationStatus string

const (
	DONATION_PENDING    DonationStatus = "pending"
	DONATION_AUTHORIZED DonationStatus = "authorized"
	DONATION_FAILED     DonationStatus = "failed"
	DONATION_ABORTED    DonationStatus = "aborted"
)

// Terminal reports whether the status can no longer change. Statuses other
// than the named constants come lower-cased from the provider and are all
// terminal for the attempt.
func (s DonationStatus) Terminal() bool {
	return s != "" && s != DONATION_PENDING
}

type CreateDonationRequestBody struct {
	Amount  string `json:"amount" binding:"required,clpamount"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty" binding:"omitempty,email"`
	Message string `json:"message,omitempty"`
}

type ContactRequestBody struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type RegisterUserRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name,omitempty"`
}

type LoginRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type APIResponseDonation struct {
	ID                 uint       `json:"id"`
	Amount             int64      `json:"amount,omitempty"`
	BuyOrder           string     `json:"buy_order,omitempty"`
	Status             string     `json:"status,omitempty"`
	AuthorizationCode  string     `json:"authorization_code,omitempty"`
	PaymentType        string     `json:"payment_type,omitempty"`
	InstallmentsNumber int        `json:"installments_number,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}
