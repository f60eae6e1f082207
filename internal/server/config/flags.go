package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags overlays selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   access-token HMAC secret
//	-c string   confirmation-token HMAC secret
//	-t int      access token validity, seconds
//	-r int      refresh token validity, seconds
//	-o int      confirmation token validity, seconds
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("accountd", flag.ContinueOnError)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.AccessTokenSecret, "s", cfg.AccessTokenSecret, "access token secret")
	fs.StringVar(&cfg.ConfirmationTokenSecret, "c", cfg.ConfirmationTokenSecret, "confirmation token secret")

	accessTTL := fs.Int("t", int(cfg.AccessTokenTTL.Seconds()), "access token validity (seconds)")
	refreshTTL := fs.Int("r", int(cfg.RefreshTokenTTL.Seconds()), "refresh token validity (seconds)")
	confirmationTTL := fs.Int("o", int(cfg.ConfirmationTokenTTL.Seconds()), "confirmation token validity (seconds)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.AccessTokenTTL = time.Duration(*accessTTL) * time.Second
	cfg.RefreshTokenTTL = time.Duration(*refreshTTL) * time.Second
	cfg.ConfirmationTokenTTL = time.Duration(*confirmationTTL) * time.Second
}
