package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultCoinCapURL = "https://rest.coincap.io/v3"

type Config struct {
	Address         string
	Port            int
	BaseURL         string
	CoinCapURL      string
	CoinCapAPIKey   string
	UpstreamTimeout time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	MongoURI        string
	JWTSecret       string
	AssetCacheTTL   time.Duration
	HistoryCacheTTL time.Duration
	PollInterval    time.Duration
	MaxRetained     int
	Location        *time.Location
	LogLevel        string
}

// Load reads the configuration from the environment, after merging an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getenv("PORT", "7000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, errors.New("invalid PORT value")
	}

	redisDB, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid REDIS_DB value")
	}

	maxRetained, err := strconv.Atoi(getenv("MAX_RETAINED", "70"))
	if err != nil || maxRetained <= 0 {
		return nil, errors.New("invalid MAX_RETAINED value")
	}

	upstreamTimeout, err := duration("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	assetTTL, err := duration("ASSET_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	historyTTL, err := duration("HISTORY_CACHE_TTL", 60*time.Second)
	if err != nil {
		return nil, err
	}
	pollInterval, err := duration("POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	if pollInterval <= 0 {
		return nil, errors.New("invalid POLL_INTERVAL value")
	}

	loc, err := time.LoadLocation(getenv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE value: %w", err)
	}

	return &Config{
		Address:         getenv("ADDRESS", "0.0.0.0"),
		Port:            port,
		BaseURL:         getenv("BASE_URL", "http://localhost:"+portStr),
		CoinCapURL:      getenv("COINCAP_BASE_URL", DefaultCoinCapURL),
		CoinCapAPIKey:   os.Getenv("COINCAP_API_KEY"),
		UpstreamTimeout: upstreamTimeout,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		MongoURI:        os.Getenv("MONGO_URI"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AssetCacheTTL:   assetTTL,
		HistoryCacheTTL: historyTTL,
		PollInterval:    pollInterval,
		MaxRetained:     maxRetained,
		Location:        loc,
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}, nil
}

// Validate checks the settings the proxy server cannot run without.
func (c *Config) Validate() error {
	if c.CoinCapAPIKey == "" {
		return errors.New("COINCAP_API_KEY is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}
