package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Calendar feed listing already-booked ranges. Empty means availability
	// runs in unverified mode.
	AirbnbICalURL string `mapstructure:"AIRBNB_ICAL_URL"`

	// Pricing configuration (whole currency units).
	NightlyRate   int `mapstructure:"NIGHTLY_RATE"`
	CleaningFee   int `mapstructure:"CLEANING_FEE"`
	MaxGuests     int `mapstructure:"MAX_GUESTS"`
	BaseGuests    int `mapstructure:"BASE_GUESTS"`
	ExtraGuestFee int `mapstructure:"EXTRA_GUEST_FEE"`

	// Stripe configuration. An empty key disables checkout.
	StripeKey  string `mapstructure:"STRIPE_SECRET_KEY"`
	SiteDomain string `mapstructure:"SITE_DOMAIN"`

	// Agent configuration.
	AIProvider   string `mapstructure:"AI_PROVIDER"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel  string `mapstructure:"OPENAI_MODEL"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Conversation store backend.
	StoreBackend  string `mapstructure:"STORE_BACKEND"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisStoreDB  int    `mapstructure:"REDIS_STORE_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("AIRBNB_ICAL_URL", "")
	viper.SetDefault("NIGHTLY_RATE", 250)
	viper.SetDefault("CLEANING_FEE", 150)
	viper.SetDefault("MAX_GUESTS", 10)
	viper.SetDefault("BASE_GUESTS", 6)
	viper.SetDefault("EXTRA_GUEST_FEE", 0)
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("SITE_DOMAIN", "http://localhost:3000")
	viper.SetDefault("AI_PROVIDER", "openai")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("STORE_BACKEND", "memory")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_STORE_DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
