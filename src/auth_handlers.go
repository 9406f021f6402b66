package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"refugio/src/db"
	"refugio/src/lib"
	"refugio/src/models"
	"refugio/src/types"
	"refugio/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	auth := apiv1.Group("/auth")
	auth.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dbi := db.GetDb()
			user := models.User{Email: body.Email, Name: body.Name}
			if err := dbi.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
				customer := models.Customer{UserID: user.ID, Name: body.Name}
				return tx.Create(&customer).Error
			}); err != nil {
				log.Printf("Error registering user: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not register user"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"id": user.ID})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dbi := db.GetDb()
			var user models.User
			if err := dbi.
				Model(&models.User{}).
				Where(&models.User{Email: body.Email}).
				First(&user).
				Error; err != nil {
				log.Printf("error: %s\n", err.Error())
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			token, err := utils.GenerateJWT(user.Email, user.ID)
			if err != nil {
				log.Printf("Error generating token: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
				return
			}
			if rd := lib.GetRedisClient(); rd != nil {
				buser, _ := json.Marshal(&user)
				if err := rd.Set(context.Background(), fmt.Sprintf("%d:user", user.ID), string(buser), 24*time.Hour).Err(); err != nil {
					log.Printf("[redis] Error updating user cache: %s\n", err.Error())
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token})
		})
	return auth
}
