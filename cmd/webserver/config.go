package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the webserver settings, read from the environment and an optional .env file
type Config struct {
	Port             string
	DBPath           string
	SessionSecret    string
	ParserConfigPath string
	MaxUploadMB      int64
	CacheSize        int
}

func loadConfig() (Config, error) {
	envFile := envOr("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Config{
		Port:             envOr("PORT", "8180"),
		DBPath:           envOr("DB_PATH", "./quizbank.db"),
		SessionSecret:    envOr("SESSION_SECRET", ""),
		ParserConfigPath: envOr("PARSER_CONFIG", ""),
	}

	maxUpload, err := strconv.ParseInt(envOr("MAX_UPLOAD_MB", "20"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return Config{}, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	cfg.MaxUploadMB = maxUpload

	cacheSize, err := strconv.Atoi(envOr("BANK_CACHE_SIZE", "16"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid BANK_CACHE_SIZE: %w", err)
	}
	cfg.CacheSize = cacheSize

	if cfg.SessionSecret == "" {
		log.Printf("SESSION_SECRET not set, using a development secret")
		cfg.SessionSecret = "quizbank-dev-secret"
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
