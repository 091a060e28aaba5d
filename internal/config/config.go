package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

// MediaConfig holds the connection settings for the remote image store.
type MediaConfig struct {
	Endpoint     string
	PublicURL    string // base URL clients use to retrieve objects
	AccessKey    string
	SecretKey    string
	Bucket       string
	Folder       string // logical namespace for product images
	UploadPreset string // preset name embedded in direct-upload signatures
	UseSSL       bool
	StrictDelete bool // strict mode: destroy failures block catalog mutations
}

type RateLimitConfig struct {
	RequestsPerWindow int
	WindowSeconds     int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "4000")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60)
	viper.SetDefault("MEDIA_ENDPOINT", "localhost:9000")
	viper.SetDefault("MEDIA_BUCKET", "products")
	viper.SetDefault("MEDIA_FOLDER", "products")
	viper.SetDefault("MEDIA_UPLOAD_PRESET", "ml_default")
	viper.SetDefault("MEDIA_USE_SSL", false)
	viper.SetDefault("MEDIA_STRICT_DELETE", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Media: MediaConfig{
			Endpoint:     viper.GetString("MEDIA_ENDPOINT"),
			PublicURL:    viper.GetString("MEDIA_PUBLIC_URL"),
			AccessKey:    viper.GetString("MEDIA_ACCESS_KEY"),
			SecretKey:    viper.GetString("MEDIA_SECRET_KEY"),
			Bucket:       viper.GetString("MEDIA_BUCKET"),
			Folder:       viper.GetString("MEDIA_FOLDER"),
			UploadPreset: viper.GetString("MEDIA_UPLOAD_PRESET"),
			UseSSL:       viper.GetBool("MEDIA_USE_SSL"),
			StrictDelete: viper.GetBool("MEDIA_STRICT_DELETE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:     viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}
}
