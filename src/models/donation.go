package models

import (
	"refugio/src/types"
)

// Donation is one payment attempt against Webpay. Rows are never deleted;
// terminal statuses keep the full provider payload for audit.
type Donation struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	CustomerID *uint `json:"customer_id,omitempty"`

	Amount  int64  `json:"amount"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`

	BuyOrder  string `gorm:"uniqueIndex" json:"buy_order"`
	SessionID string `json:"session_id,omitempty"`

	Status             types.DonationStatus `gorm:"default:pending" json:"status"`
	TokenWs            string               `gorm:"index" json:"-"`
	AuthorizationCode  string               `json:"authorization_code,omitempty"`
	PaymentType        string               `json:"payment_type,omitempty"`
	InstallmentsNumber int                  `json:"installments_number,omitempty"`
	ResponseRaw        *types.JSONB         `gorm:"type:jsonb" json:"-"`

	Customer *Customer `gorm:"foreignKey:customer_id" json:"-"`

	types.Timestamps
}
