package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// TokenExpiryDuration bounds how old an account token's iat may be.
	TokenExpiryDuration time.Duration
	// ProofExpiryDuration bounds how old a signup proof timestamp may be.
	ProofExpiryDuration time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("TOKEN_EXPIRY_DURATION", "1h")
	viper.SetDefault("SIGNUP_PROOF_EXPIRY_DURATION", "1h")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	tokenExpiryStr := viper.GetString("TOKEN_EXPIRY_DURATION")
	tokenExpiry, err := time.ParseDuration(tokenExpiryStr)
	if err != nil {
		tokenExpiry = time.Hour
		log.Printf("Warning: Invalid value for TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", tokenExpiryStr, tokenExpiry)
	}
	cfg.TokenExpiryDuration = tokenExpiry

	proofExpiryStr := viper.GetString("SIGNUP_PROOF_EXPIRY_DURATION")
	proofExpiry, err := time.ParseDuration(proofExpiryStr)
	if err != nil {
		proofExpiry = time.Hour
		log.Printf("Warning: Invalid value for SIGNUP_PROOF_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", proofExpiryStr, proofExpiry)
	}
	cfg.ProofExpiryDuration = proofExpiry

	return cfg, nil
}
