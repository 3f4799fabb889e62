// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Database struct {
	Driver   string // postgres | memory
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	TimeZone string
}

type Redis struct {
	Addr     string
	Password string
	StatsTTL time.Duration
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type Storage struct {
	Region     string
	Bucket     string
	Endpoint   string
	PresignTTL time.Duration
}

// Env holds the configuration values for the API server.
type Env struct {
	Port           string
	AppEnv         string
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string

	Database Database
	Redis    Redis
	Kafka    Kafka
	Storage  Storage
}

func (e Env) Production() bool { return e.AppEnv == "production" }

// MustLoad reads .env (if present) and the process environment.
func MustLoad() Env {
	_ = godotenv.Load()

	e := Env{
		Port:           get("PORT", "8080"),
		AppEnv:         get("APP_ENV", "development"),
		JWTSecret:      must("JWT_SECRET"),
		TokenTTL:       time.Duration(atoi("TOKEN_TTL_HOURS", 24)) * time.Hour,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		CORSOrigins:    csv("CORS_ORIGINS", "*"),
		Database: Database{
			Driver:   get("DB_DRIVER", "postgres"),
			Host:     get("DB_HOST", "localhost"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "carequo"),
			Port:     get("DB_PORT", "5432"),
			SSLMode:  get("DB_SSLMODE", "disable"),
			TimeZone: get("DB_TIMEZONE", "UTC"),
		},
		Redis: Redis{
			Addr:     get("REDIS_ADDR", ""),
			Password: get("REDIS_PASSWORD", ""),
			StatsTTL: time.Duration(atoi("STATS_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: Kafka{
			Brokers: csv("KAFKA_BROKERS", ""),
			Topic:   get("KAFKA_TOPIC", "carequo.events"),
		},
		Storage: Storage{
			Region:     get("AWS_REGION", "us-east-1"),
			Bucket:     get("S3_BUCKET", ""),
			Endpoint:   get("AWS_ENDPOINT_URL", ""),
			PresignTTL: time.Duration(atoi("PRESIGN_TTL_SECONDS", 300)) * time.Second,
		},
	}
	if e.Database.Driver != "postgres" && e.Database.Driver != "memory" {
		panic(fmt.Errorf("unsupported DB_DRIVER %q", e.Database.Driver))
	}
	return e
}

// Portal holds the settings of the terminal portal.
type Portal struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
	Debug       bool
}

func LoadPortal() Portal {
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	return Portal{
		APIURL:      strings.TrimRight(get("PORTAL_API_URL", "http://localhost:8080/api"), "/"),
		SessionFile: get("PORTAL_SESSION_FILE", home+"/.carequo/session.json"),
		Timeout:     time.Duration(atoi("PORTAL_TIMEOUT_SECONDS", 10)) * time.Second,
		Debug:       get("PORTAL_DEBUG", "") == "true",
	}
}

// get returns the value of the environment variable k or def if not set.
func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// must returns the value of the environment variable k or panics if not set.
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic(fmt.Errorf("missing env %s", k))
	}
	return v
}

func atoi(k string, def int) int {
	n, err := strconv.Atoi(get(k, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func csv(k, def string) []string {
	raw := get(k, def)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
