package models

import "refugio/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`

	Customer *Customer `gorm:"foreignKey:user_id" json:"customer,omitempty"`

	types.Timestamps
}
