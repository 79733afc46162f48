package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Store     StoreConfig
	Storage   StorageConfig
	AI        AIConfig
	Analytics AnalyticsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

// StoreConfig selects where the ledger snapshot is written after every
// mutation.
type StoreConfig struct {
	Backend  string
	FilePath string
	RedisKey string
	SeedDemo bool
}

// StorageConfig points at the S3-compatible bucket holding archived reports.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type AIConfig struct {
	OpenAIAPIKey   string
	Model          string
	TimeoutSeconds int
}

type AnalyticsConfig struct {
	LeadTimeDays       int
	SafetyBufferDays   int
	DetailWindowDays   int
	SummaryWindowDays  int
	SlowMovingDays     int
	NeverSoldAgeDays   int
	OverduePOAfterDays int
	OverdueCheckMins   int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = build()

		if instance.Store.Backend == "file" {
			ensureDir(filepath.Dir(instance.Store.FilePath))
		}
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "stockledger")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)

	viper.SetDefault("STORE_BACKEND", "file")
	viper.SetDefault("STORE_FILE_PATH", "./data/ledger.json")
	viper.SetDefault("STORE_REDIS_KEY", "stockledger:snapshot")
	viper.SetDefault("STORE_SEED_DEMO", true)

	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("MINIO_ENDPOINT", "")
	viper.SetDefault("MINIO_ACCESS_KEY", "")
	viper.SetDefault("MINIO_SECRET_KEY", "")
	viper.SetDefault("MINIO_BUCKET", "stockledger-reports")
	viper.SetDefault("MINIO_USE_SSL", false)

	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o")
	viper.SetDefault("AI_TIMEOUT_SECONDS", 30)

	viper.SetDefault("ANALYTICS_LEAD_TIME_DAYS", 14)
	viper.SetDefault("ANALYTICS_SAFETY_BUFFER_DAYS", 7)
	viper.SetDefault("ANALYTICS_DETAIL_WINDOW_DAYS", 90)
	viper.SetDefault("ANALYTICS_SUMMARY_WINDOW_DAYS", 30)
	viper.SetDefault("ANALYTICS_SLOW_MOVING_DAYS", 90)
	viper.SetDefault("ANALYTICS_NEVER_SOLD_AGE_DAYS", 120)
	viper.SetDefault("ANALYTICS_OVERDUE_PO_DAYS", 7)
	viper.SetDefault("ANALYTICS_OVERDUE_CHECK_MINUTES", 60)
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:             viper.GetBool("CACHE_ENABLED"),
			RedisURL:            viper.GetString("REDIS_URL"),
			RedisHost:           viper.GetString("REDIS_HOST"),
			RedisPort:           viper.GetString("REDIS_PORT"),
			RedisPassword:       viper.GetString("REDIS_PASSWORD"),
			RedisDB:             viper.GetInt("REDIS_DB"),
			DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
		},
		Store: StoreConfig{
			Backend:  viper.GetString("STORE_BACKEND"),
			FilePath: viper.GetString("STORE_FILE_PATH"),
			RedisKey: viper.GetString("STORE_REDIS_KEY"),
			SeedDemo: viper.GetBool("STORE_SEED_DEMO"),
		},
		Storage: StorageConfig{
			Enabled:   viper.GetBool("STORAGE_ENABLED"),
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
		},
		AI: AIConfig{
			OpenAIAPIKey:   viper.GetString("OPENAI_API_KEY"),
			Model:          viper.GetString("OPENAI_MODEL"),
			TimeoutSeconds: viper.GetInt("AI_TIMEOUT_SECONDS"),
		},
		Analytics: AnalyticsConfig{
			LeadTimeDays:       viper.GetInt("ANALYTICS_LEAD_TIME_DAYS"),
			SafetyBufferDays:   viper.GetInt("ANALYTICS_SAFETY_BUFFER_DAYS"),
			DetailWindowDays:   viper.GetInt("ANALYTICS_DETAIL_WINDOW_DAYS"),
			SummaryWindowDays:  viper.GetInt("ANALYTICS_SUMMARY_WINDOW_DAYS"),
			SlowMovingDays:     viper.GetInt("ANALYTICS_SLOW_MOVING_DAYS"),
			NeverSoldAgeDays:   viper.GetInt("ANALYTICS_NEVER_SOLD_AGE_DAYS"),
			OverduePOAfterDays: viper.GetInt("ANALYTICS_OVERDUE_PO_DAYS"),
			OverdueCheckMins:   viper.GetInt("ANALYTICS_OVERDUE_CHECK_MINUTES"),
		},
	}
}

func ensureDir(dir string) {
	if dir == "" || dir == "." {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
