package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string   `mapstructure:"APP_PORT"`
	Env               string   `mapstructure:"ENV"`
	LogLevel          string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    []string `mapstructure:"ALLOWED_ORIGINS"`
	// Proxies whose X-Forwarded-For / X-Real-IP headers are believed when
	// resolving the client IP. Empty means the socket address is used.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// PHMS backend.
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`

	// Web sessions.
	SessionCookie string        `mapstructure:"SESSION_COOKIE"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SecureCookies bool          `mapstructure:"SECURE_COOKIES"`
	FlowTTL       time.Duration `mapstructure:"FLOW_TTL"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB   int    `mapstructure:"REDIS_SESSION_DB"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderDB  int    `mapstructure:"REDIS_REMINDER_DB"`
	RemindersEnabled bool   `mapstructure:"REMINDERS_ENABLED"`

	// Feedback storage; empty disables MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Counsellor dashboard.
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminAPIToken     string `mapstructure:"ADMIN_API_TOKEN"`

	// Chatbot.
	GeminiAPIKey             string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string        `mapstructure:"GEMINI_MODEL"`
	ChatHistoryTTL           time.Duration `mapstructure:"CHAT_HISTORY_TTL"`
	GoogleServiceAccountFile string        `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("TRUSTED_PROXIES", []string{})

	viper.SetDefault("API_BASE_URL", "https://phms-backend.onrender.com")
	viper.SetDefault("API_TIMEOUT", 10*time.Second)

	viper.SetDefault("SESSION_COOKIE", "mindbloom_session")
	viper.SetDefault("SESSION_TTL", 24*time.Hour)
	viper.SetDefault("SESSION_SECRET", "")
	viper.SetDefault("SECURE_COOKIES", false)
	viper.SetDefault("FLOW_TTL", 30*time.Minute)

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_REMINDER_DB", 2)
	viper.SetDefault("REMINDERS_ENABLED", false)

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DATABASE_NAME", "mindbloom")

	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("ADMIN_API_TOKEN", "")

	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-flash")
	viper.SetDefault("CHAT_HISTORY_TTL", 30*time.Minute)
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
}

// LoadConfig looks for config.yaml in the current and ./config directory and
// overlays environment variables on top of it.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

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
