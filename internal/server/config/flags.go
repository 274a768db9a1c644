package config

import (
	"flag"
	"os"
	"time"

	"github.com/sketchmotion/sketchmotion/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   identity HMAC secret key
//	-c string   media cloud name
//	-k string   media API key
//	-p string   media API secret
//	-t int      delivery URL lifetime, minutes
//	-w int      sweep interval, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-c", "-k", "-p", "-t", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AuthSecret, "s", config.AuthSecret, "identity secret key")
	fs.StringVar(&config.MediaCloudName, "c", config.MediaCloudName, "media cloud name")
	fs.StringVar(&config.MediaAPIKey, "k", config.MediaAPIKey, "media API key")
	fs.StringVar(&config.MediaAPISecret, "p", config.MediaAPISecret, "media API secret")

	deliveryURLTTL := fs.Int("t", int(config.DeliveryURLTTL.Minutes()), "delivery_url_ttl (in minutes)")
	sweepInterval := fs.Int("w", int(config.SweepInterval.Minutes()), "sweep_interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.DeliveryURLTTL = time.Duration(*deliveryURLTTL) * time.Minute
	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
}
