// Package config loads runtime settings from .env files and the process
// environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	MediaLocal = "local"
	MediaMinio = "minio"
)

type Config struct {
	Env      string
	HTTPAddr string

	DBDriver string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	PostsPerPage int

	JWTSecret  []byte
	SessionTTL time.Duration

	MediaBackend string
	MediaRoot    string
	MediaURL     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
}

// Load reads the .env files following the dotenv convention
// (https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use) and then
// builds a Config from the environment. Variables already set in the process
// environment win over anything in the files.
func Load() *Config {
	loadDotEnvs("")
	return FromEnv()
}

func loadDotEnvs(rootPath string) {
	env := currentEnv()

	// .env.[runtime_env].local has highest priority, usually contains passwords
	godotenv.Load(rootPath + ".env." + env + ".local")
	godotenv.Load(rootPath + ".env.local")
	godotenv.Load(rootPath + ".env." + env)
	godotenv.Load(rootPath + ".env")
}

func currentEnv() string {
	env := os.Getenv("YATUBE_ENV")
	if env == "" {
		env = "dev"
	}
	return env
}

// FromEnv builds a Config from environment variables only.
func FromEnv() *Config {
	return &Config{
		Env:      currentEnv(),
		HTTPAddr: stringFromEnv("HTTP_ADDR", ":8080"),

		DBDriver: strings.ToLower(stringFromEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:    stringFromEnv("DB_DSN", "yatube.db"),

		RedisAddr:     stringFromEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intFromEnv("REDIS_DB", 0),
		CacheTTL:      time.Duration(intFromEnv("CACHE_TTL_SECONDS", 20)) * time.Second,

		PostsPerPage: intFromEnv("POSTS_PER_PAGE", 10),

		JWTSecret:  []byte(stringFromEnv("JWT_SECRET", "my_secret_key")),
		SessionTTL: time.Duration(intFromEnv("SESSION_TTL_HOURS", 24)) * time.Hour,

		MediaBackend: strings.ToLower(stringFromEnv("MEDIA_BACKEND", MediaLocal)),
		MediaRoot:    stringFromEnv("MEDIA_ROOT", "media"),
		MediaURL:     stringFromEnv("MEDIA_URL", "/media/"),

		MinioEndpoint:  stringFromEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    stringFromEnv("MINIO_BUCKET", "yatube"),
		MinioUseSSL:    boolFromEnv("MINIO_USE_SSL", false),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
	}
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func stringFromEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func intFromEnv(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func boolFromEnv(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
