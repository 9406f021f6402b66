package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"refugio/src/config"
	"refugio/src/db"
	"refugio/src/lib"
	"refugio/src/models"
	"refugio/src/types"
	"refugio/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func donationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/donar", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{
				"min_amount": config.MinDonationCLP(),
				"currency":   "CLP",
			})
		}).
		POST("/donar", func(ctx *gin.Context) {
			var body types.CreateDonationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			amount, err := utils.ParseAmountCLP(body.Amount)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			minAmount := config.MinDonationCLP()
			if amount < minAmount {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("minimum donation is $%d", minAmount)})
				return
			}

			userId := ctx.GetUint("id")
			dbi := db.GetDb()
			var customerID *uint
			var customer models.Customer
			if err := dbi.
				Model(&models.Customer{}).
				Where(&models.Customer{UserID: userId}).
				First(&customer).
				Error; err == nil {
				customerID = &customer.ID
			}

			donation := models.Donation{
				CustomerID: customerID,
				Amount:     amount,
				Name:       strings.TrimSpace(body.Name),
				Email:      strings.TrimSpace(body.Email),
				Message:    strings.TrimSpace(body.Message),
				BuyOrder:   utils.NewBuyOrder(),
				SessionID:  utils.NewSessionID(),
				Status:     types.DONATION_PENDING,
			}
			if err := dbi.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&donation).Error
			}); err != nil {
				log.Printf("Error creating donation: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not create donation"})
				return
			}

			wp := lib.GetWebpayClient()
			resp, err := wp.Create(context.Background(), donation.BuyOrder, donation.SessionID, donation.Amount, config.ReturnURL())
			if err != nil {
				log.Printf("Error initiating Webpay transaction: %s\n", err.Error())
				markDonationFailed(donation.ID, nil)
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not start payment"})
				return
			}
			if resp.Token == "" || resp.URL == "" {
				log.Printf("Unexpected Webpay response for %s: token or url missing\n", donation.BuyOrder)
				raw := types.JSONB{"token": resp.Token, "url": resp.URL}
				markDonationFailed(donation.ID, &raw)
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not start payment"})
				return
			}

			raw := types.JSONB{"token": resp.Token, "url": resp.URL}
			if err := dbi.
				Model(&models.Donation{}).
				Where("id = ?", donation.ID).
				Updates(map[string]any{"token_ws": resp.Token, "response_raw": raw}).
				Error; err != nil {
				log.Printf("Error storing Webpay token for donation %d: %s\n", donation.ID, err.Error())
				// Without the token the reconciliation job cannot pick the
				// row up, so it must not stay pending.
				markDonationFailed(donation.ID, nil)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not update donation"})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{
				"url":       resp.URL,
				"token":     resp.Token,
				"redirect":  fmt.Sprintf("%s?token_ws=%s", resp.URL, resp.Token),
				"buy_order": donation.BuyOrder,
			})
		}).
		GET("/donar/historial", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			dbi := db.GetDb()
			var customer models.Customer
			if err := dbi.
				Model(&models.Customer{}).
				Where(&models.Customer{UserID: userId}).
				First(&customer).
				Error; err != nil {
				ctx.JSON(http.StatusOK, gin.H{"data": []types.APIResponseDonation{}})
				return
			}
			var donations []models.Donation
			if err := dbi.
				Model(&models.Donation{}).
				Where("customer_id = ?", customer.ID).
				Order("created_at desc").
				Find(&donations).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			data := make([]types.APIResponseDonation, 0, len(donations))
			for _, d := range donations {
				createdAt := d.CreatedAt
				data = append(data, types.APIResponseDonation{
					ID:                 d.ID,
					Amount:             d.Amount,
					BuyOrder:           d.BuyOrder,
					Status:             string(d.Status),
					AuthorizationCode:  d.AuthorizationCode,
					PaymentType:        d.PaymentType,
					InstallmentsNumber: d.InstallmentsNumber,
					CreatedAt:          &createdAt,
				})
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data})
		})
	return g
}

func donationPublicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/donar/retorno", webpayReturn).
		POST("/donar/retorno", webpayReturn).
		GET("/donar/estado", func(ctx *gin.Context) {
			token := ctx.Query("token")
			if token == "" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
				return
			}
			wp := lib.GetWebpayClient()
			data, err := wp.Status(context.Background(), token)
			if err != nil {
				log.Printf("Error querying Webpay status: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, data)
		})
	return apiv1
}

// webpayReturn handles the browser coming back from the provider, for both
// completed and user-aborted checkouts. The commit-path update is
// conditional on the row still being pending so a replayed callback cannot
// overwrite a terminal status.
func webpayReturn(ctx *gin.Context) {
	token := formOrQuery(ctx, "token_ws")
	tbkToken := formOrQuery(ctx, "TBK_TOKEN")
	tbkOrder := formOrQuery(ctx, "TBK_ORDEN_COMPRA")
	tbkSession := formOrQuery(ctx, "TBK_ID_SESION")

	dbi := db.GetDb()

	if tbkToken != "" || tbkOrder != "" || tbkSession != "" {
		if tbkOrder != "" {
			if err := dbi.
				Model(&models.Donation{}).
				Where("buy_order = ? AND status = ?", tbkOrder, types.DONATION_PENDING).
				Update("status", types.DONATION_ABORTED).
				Error; err != nil {
				log.Printf("Error aborting donation %s: %s\n", tbkOrder, err.Error())
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"ok": false, "aborted": true})
		return
	}

	if token == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	var donation models.Donation
	if err := dbi.
		Model(&models.Donation{}).
		Where(&models.Donation{TokenWs: token}).
		First(&donation).
		Error; err != nil {
		log.Printf("Webpay return without matching donation. token=%s\n", token)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown transaction"})
		return
	}

	if donation.Status.Terminal() {
		ctx.JSON(http.StatusOK, gin.H{
			"ok":                  donation.Status == types.DONATION_AUTHORIZED,
			"status":              donation.Status,
			"buy_order":           donation.BuyOrder,
			"amount":              donation.Amount,
			"authorization_code":  donation.AuthorizationCode,
			"payment_type":        donation.PaymentType,
			"installments_number": donation.InstallmentsNumber,
		})
		return
	}

	wp := lib.GetWebpayClient()
	result, err := wp.Commit(context.Background(), token)
	if err != nil {
		log.Printf("Error committing Webpay transaction: %s\n", err.Error())
		markDonationFailed(donation.ID, nil)
		ctx.JSON(http.StatusOK, gin.H{"ok": false, "error": "commit_failed"})
		return
	}

	status := types.DONATION_FAILED
	if s := strings.ToUpper(result.Status); s == "AUTHORIZED" {
		status = types.DONATION_AUTHORIZED
	} else if s != "" {
		status = types.DonationStatus(strings.ToLower(s))
	}

	if err := dbi.
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", donation.ID, types.DONATION_PENDING).
		Updates(map[string]any{
			"status":              status,
			"authorization_code":  result.AuthorizationCode,
			"payment_type":        result.PaymentTypeCode,
			"installments_number": result.InstallmentsNumber,
			"response_raw":        types.JSONB(result.Raw),
		}).
		Error; err != nil {
		log.Printf("Error updating donation %d: %s\n", donation.ID, err.Error())
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ok":                  status == types.DONATION_AUTHORIZED,
		"status":              status,
		"buy_order":           donation.BuyOrder,
		"amount":              donation.Amount,
		"authorization_code":  result.AuthorizationCode,
		"payment_type":        result.PaymentTypeCode,
		"installments_number": result.InstallmentsNumber,
	})
}

// markDonationFailed is conditional on the row still being pending so a late
// failure cannot overwrite a terminal status.
func markDonationFailed(id uint, raw *types.JSONB) {
	dbi := db.GetDb()
	updates := map[string]any{"status": types.DONATION_FAILED}
	if raw != nil {
		updates["response_raw"] = *raw
	}
	if err := dbi.
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, types.DONATION_PENDING).
		Updates(updates).
		Error; err != nil {
		log.Printf("Error marking donation %d as failed: %s\n", id, err.Error())
	}
}

func formOrQuery(ctx *gin.Context, key string) string {
	if v := ctx.PostForm(key); v != "" {
		return v
	}
	return ctx.Query(key)
}
