package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Credentials and base URL for one carrier API. A carrier is only
// wired into the engine when its required credentials are present.
type CarrierConfig struct {
	BaseURL      string
	APIKey       string
	ClientID     string
	ClientSecret string
}

// Configured reports whether the carrier has any credentials at all.
func (c CarrierConfig) Configured() bool {
	return c.APIKey != "" || (c.ClientID != "" && c.ClientSecret != "")
}

type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	LogsDirectory string

	// Fan-out deadlines: one slow carrier must not starve the rest.
	AggregateTimeout time.Duration
	AdapterTimeout   time.Duration

	QuoteCacheTTL    time.Duration
	TrackingCacheTTL time.Duration

	DHL    CarrierConfig
	FedEx  CarrierConfig
	UPS    CarrierConfig
	Shippo CarrierConfig
}

// Load reads configuration from the environment, with .env support for
// local runs.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	return &Config{
		Port:          Get("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		LogsDirectory: os.Getenv("LOGS_DIRECTORY"),

		AggregateTimeout: duration("AGGREGATE_TIMEOUT_MS", 5000),
		AdapterTimeout:   duration("ADAPTER_TIMEOUT_MS", 2000),

		QuoteCacheTTL:    time.Duration(integer("QUOTE_CACHE_TTL_SECONDS", 60)) * time.Second,
		TrackingCacheTTL: time.Duration(integer("TRACKING_CACHE_TTL_SECONDS", 120)) * time.Second,

		DHL: CarrierConfig{
			BaseURL: Get("DHL_API_BASE_URI", "https://api-mock.dhl.com"),
			APIKey:  os.Getenv("DHL_API_KEY"),
		},
		FedEx: CarrierConfig{
			BaseURL:      Get("FEDEX_API_BASE_URI", "https://apis.fedex.com"),
			ClientID:     os.Getenv("FEDEX_CLIENT_ID"),
			ClientSecret: os.Getenv("FEDEX_CLIENT_SECRET"),
		},
		UPS: CarrierConfig{
			BaseURL:      Get("UPS_API_BASE_URI", "https://onlinetools.ups.com"),
			ClientID:     os.Getenv("UPS_API_CLIENT_ID"),
			ClientSecret: os.Getenv("UPS_API_CLIENT_SECRET"),
		},
		Shippo: CarrierConfig{
			BaseURL: Get("SHIPPO_API_BASE_URI", "https://api.goshippo.com"),
			APIKey:  os.Getenv("SHIPPO_API_TOKEN"),
		},
	}
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func integer(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func duration(key string, fallbackMS int) time.Duration {
	return time.Duration(integer(key, fallbackMS)) * time.Millisecond
}
