package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"refugio/src/db"
	"refugio/src/lib"
	"refugio/src/models"
	"refugio/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func contactHandlers(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/contacto", func(ctx *gin.Context) {
		var body types.ContactRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		msg := models.ContactMessage{
			Name:    strings.TrimSpace(body.Name),
			Email:   strings.TrimSpace(body.Email),
			Message: strings.TrimSpace(body.Message),
		}
		dbi := db.GetDb()
		if err := dbi.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&msg).Error
		}); err != nil {
			log.Printf("Error saving contact message: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
			return
		}
		go notifyContact(&msg)
		ctx.JSON(http.StatusCreated, gin.H{"id": msg.ID})
	})
	return apiv1
}

// notifyContact forwards the message to the site operators. Best effort:
// the message is already persisted when this runs.
func notifyContact(m *models.ContactMessage) {
	to := os.Getenv("CONTACT_NOTIFY_EMAIL")
	if to == "" {
		return
	}
	err := lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("SMTP_FROM"),
		FromName: "Mi Refugio",
		To:       []string{to},
		ReplyTo:  m.Email,
		Subject:  fmt.Sprintf("Nuevo mensaje de contacto de %s", m.Name),
		Body:     m.Message,
	})
	if err != nil {
		log.Printf("Error sending contact notification: %s\n", err.Error())
	}
}
