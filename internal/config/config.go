package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/umami-pos/api/internal/enum"
)

type Config struct {
	Port        string
	DatabaseURL string // empty runs on the in-memory store
	JWTSecret   string
	AMQPURL     string // empty disables the kitchen publisher

	TableCount          int
	OrderStore          string
	TerminalIdleTimeout time.Duration
	CORSOrigins         []string
}

func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8081"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AMQPURL:             os.Getenv("AMQP_URL"),
		TableCount:          getEnvInt("TABLE_COUNT", 12),
		OrderStore:          getOrderStore(),
		TerminalIdleTimeout: getEnvDuration("TERMINAL_IDLE_TIMEOUT", 30*time.Minute),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getOrderStore() string {
	switch v := strings.ToLower(os.Getenv("ORDER_STORE")); v {
	case "", enum.OrderStoreLocal:
		return enum.OrderStoreLocal
	case enum.OrderStoreRemote:
		return enum.OrderStoreRemote
	default:
		log.Printf("WARNING: unknown ORDER_STORE=%q, using %s", v, enum.OrderStoreLocal)
		return enum.OrderStoreLocal
	}
}
