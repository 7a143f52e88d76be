package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	// memory | mongo | postgres
	StoreDriver  string
	StoreTimeout time.Duration
	MongoURI     string
	MongoDB      string
	DBURL        string

	// strict | compat
	StatusMode string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ErrorChannel  string

	OTLPEndpoint string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	SeedEmail     string
	SeedPassword  string
	SeedFirstName string
	SeedLastName  string
}

func Load() Config {
	// a missing .env is fine, the process environment still applies
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not parse .env", "err", err)
	}

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 4000),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTL:     getEnvDuration("JWT_TTL", 24*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 3*time.Second),
		MongoURI:     getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:      getEnv("MONGO_DB", "userhub"),
		DBURL:        getEnv("DATABASE_URL", buildDBURL()),

		StatusMode: strings.ToLower(getEnv("STATUS_MODE", "strict")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ErrorChannel:  getEnv("ERROR_CHANNEL", "userhub.errors"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		SeedEmail:     os.Getenv("SEED_EMAIL"),
		SeedPassword:  os.Getenv("SEED_PASSWORD"),
		SeedFirstName: getEnv("SEED_FIRST_NAME", "Admin"),
		SeedLastName:  getEnv("SEED_LAST_NAME", "User"),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "userhub")
	pass := getEnv("DB_PASSWORD", "userhub")
	name := getEnv("DB_NAME", "userhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in env, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			slog.Warn("invalid duration in env, using default", "key", key, "value", v)
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
