package models

import "refugio/src/types"

// ContactMessage is a suggestion or inquiry sent through the landing form.
type ContactMessage struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`

	types.Timestamps
}
