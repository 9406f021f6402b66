package boot

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"refugio/src/db"
	"refugio/src/lib"
	"refugio/src/models"
	"refugio/src/types"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Donation{},
		&models.ContactMessage{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the stale-donation reconciliation job when
// RECONCILE_PENDING is set. Off by default.
func InitScheduler() {
	enabled, err := strconv.ParseBool(os.Getenv("RECONCILE_PENDING"))
	if err != nil || !enabled {
		return
	}
	interval := 30 * time.Minute
	if m, err := strconv.Atoi(os.Getenv("RECONCILE_INTERVAL_MINUTES")); err == nil && m > 0 {
		interval = time.Duration(m) * time.Minute
	}
	if _, err := lib.CreateCronJob(ReconcilePendingDonations, interval); err != nil {
		log.Printf("Error scheduling reconciliation job: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Error shutting down Scheduler: %s\n", err.Error())
	}
}

// ReconcilePendingDonations asks the provider for the current state of
// donations that started a checkout but never came back through the return
// URL, and applies any terminal status it reports. The update stays
// conditional on the row being pending, like the return-callback path.
func ReconcilePendingDonations() {
	cutoffMinutes := 60
	if m, err := strconv.Atoi(os.Getenv("RECONCILE_AFTER_MINUTES")); err == nil && m > 0 {
		cutoffMinutes = m
	}
	cutoff := time.Now().Add(-time.Duration(cutoffMinutes) * time.Minute)

	dbi := db.GetDb()
	var donations []models.Donation
	err := dbi.
		Model(&models.Donation{}).
		Where("status = ? AND token_ws <> '' AND created_at < ?", types.DONATION_PENDING, cutoff).
		Order("created_at asc").
		Limit(100).
		Find(&donations).
		Error
	if err != nil {
		log.Printf("Error retrieving stale donations: %s\n", err.Error())
		return
	}
	if len(donations) == 0 {
		return
	}
	log.Printf("Found %d stale pending donations", len(donations))

	wp := lib.GetWebpayClient()
	for _, donation := range donations {
		data, err := wp.Status(context.Background(), donation.TokenWs)
		if err != nil {
			log.Printf("Error querying status for %s: %s\n", donation.BuyOrder, err.Error())
			continue
		}
		s, _ := data["status"].(string)
		s = strings.ToUpper(s)
		if s == "" || s == "INITIALIZED" {
			continue
		}
		status := types.DonationStatus(strings.ToLower(s))
		if s == "AUTHORIZED" {
			status = types.DONATION_AUTHORIZED
		}
		if err := dbi.
			Model(&models.Donation{}).
			Where("id = ? AND status = ?", donation.ID, types.DONATION_PENDING).
			Updates(map[string]any{
				"status":       status,
				"response_raw": types.JSONB(data),
			}).
			Error; err != nil {
			log.Printf("Error reconciling donation %d: %s\n", donation.ID, err.Error())
		}
	}
}
