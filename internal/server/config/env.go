package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset
// variables leave the current value untouched; duration variables are
// integers in minutes.
func parseEnv(config *Config) {
	setString(&config.HTTPAddr, "ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.AuthSecret, "AUTH_SECRET")
	setString(&config.MediaCloudName, "MEDIA_CLOUD_NAME")
	setString(&config.MediaAPIKey, "MEDIA_API_KEY")
	setString(&config.MediaAPISecret, "MEDIA_API_SECRET")
	setString(&config.MediaAPIBaseURL, "MEDIA_API_BASE_URL")
	setString(&config.MediaDeliveryBaseURL, "MEDIA_DELIVERY_BASE_URL")
	setMinutes(&config.DeliveryURLTTL, "DELIVERY_URL_TTL")
	setString(&config.StripeAPIKey, "STRIPE_API_KEY")
	setString(&config.BillingReturnURL, "BILLING_RETURN_URL")
	setMinutes(&config.SweepInterval, "SWEEP_INTERVAL")
}

func setString(target *string, name string) {
	if value, ok := os.LookupEnv(name); ok {
		*target = value
	}
}

func setMinutes(target *time.Duration, name string) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	minutes, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	*target = time.Duration(minutes) * time.Minute
}
