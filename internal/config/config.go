package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultCacheTTL   = 12 * time.Hour
	defaultPeriodTTL  = 5 * time.Minute
	defaultAwardIndex = "award-line-items"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	ElasticsearchURL    string // empty disables the search backend
	AwardIndex          string // index of File D line item documents
	ResponseCacheTTL    time.Duration
	PeriodCacheTTL      time.Duration // how long submission windows are kept in memory; 0 reloads per request
	LogLevel            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("ELASTICSEARCH_AWARD_INDEX", defaultAwardIndex)
	viper.SetDefault("RESPONSE_CACHE_TTL", defaultCacheTTL.String())
	viper.SetDefault("SUBMISSION_CACHE_TTL", defaultPeriodTTL.String())
	viper.SetDefault("LOG_LEVEL", "info")

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	ttl := viper.GetDuration("RESPONSE_CACHE_TTL")
	if ttl < 0 {
		ttl = 0
	}
	periodTTL := viper.GetDuration("SUBMISSION_CACHE_TTL")
	if periodTTL < 0 {
		periodTTL = 0
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		ElasticsearchURL:    viper.GetString("ELASTICSEARCH_URL"),
		AwardIndex:          viper.GetString("ELASTICSEARCH_AWARD_INDEX"),
		ResponseCacheTTL:    ttl,
		PeriodCacheTTL:      periodTTL,
		LogLevel:            viper.GetString("LOG_LEVEL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}
