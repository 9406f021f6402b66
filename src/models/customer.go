package models

import "refugio/src/types"

type Customer struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID uint   `gorm:"uniqueIndex" json:"user_id"`
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`

	User      *User      `gorm:"foreignKey:user_id" json:"-"`
	Donations []Donation `gorm:"foreignKey:customer_id" json:"donations,omitempty"`

	types.Timestamps
}
