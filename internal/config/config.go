package config

import (
	"log"
	"os"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	GitHubToken       string
	GitHubLanguage    string
	ReplicateAPIToken string

	BasicAuthUser string
	BasicAuthPass string
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=hypehub password=hypehub dbname=hypehub port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		CronSpec:    getEnv("CRON_SPEC", "*/30 * * * *"),

		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		GitHubLanguage:    getEnv("GITHUB_LANGUAGE", "python"),
		ReplicateAPIToken: getEnv("REPLICATE_API_TOKEN", ""),

		BasicAuthUser: getEnv("APP_BASIC_USER", ""),
		BasicAuthPass: getEnv("APP_BASIC_PASS", ""),
	}

	log.Printf("config loaded: port=%s cron=%s language=%s", cfg.AppPort, cfg.CronSpec, cfg.GitHubLanguage)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
