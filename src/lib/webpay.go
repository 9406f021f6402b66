package lib

import (
	"log"
	"os"

	"refugio/src/lib/webpay"
)

var webpayClient *webpay.Client

// GetWebpayClient returns the shared Webpay client, building it from the
// TBK_* environment on first use. Integration mode uses the provider's
// published sandbox credentials.
func GetWebpayClient() *webpay.Client {
	if webpayClient != nil {
		return webpayClient
	}
	var c *webpay.Client
	var err error
	if os.Getenv("TBK_ENV") == "production" {
		c, err = webpay.NewClient(
			os.Getenv("TBK_API_KEY_ID"),
			os.Getenv("TBK_API_KEY_SECRET"),
			webpay.WithBaseURL(webpay.ProductionBaseURL),
		)
	} else {
		c, err = webpay.NewClient(webpay.IntegrationCommerceCode, webpay.IntegrationAPIKey)
	}
	if err != nil {
		log.Printf("[webpay] Error initializing client: %s\n", err.Error())
		return nil
	}
	webpayClient = c
	return c
}

// NewWebpayClient Replace webpay instance with custom client implementation
func NewWebpayClient(c *webpay.Client) {
	webpayClient = c
}
