// Package config loads the application configuration from environment
// variables, failing fast when a required value is missing.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// databaseFileName is fixed; the data directory is configurable around it.
const databaseFileName = "esdTrackerDb.sqlite"

// Config holds all configuration for the application.
type Config struct {
	ServerAddr   string
	DataPath     string
	DatabaseFile string
	FrontendURL  string

	JwtSecret string
	TokenTTL  time.Duration

	// Fallback administrator credentials, used only when the user table
	// is created for the first time.
	AdminEmail    string
	AdminPassword string

	SmtpHost   string
	SmtpPort   int
	SmtpUser   string
	SmtpPass   string
	SmtpSender string
}

// New loads the configuration from environment variables. Missing critical
// values stop the server from starting.
func New() (*Config, error) {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	cfg := &Config{
		ServerAddr:    os.Getenv("SERVER_ADDR"),
		DataPath:      os.Getenv("DATA_PATH"),
		JwtSecret:     os.Getenv("JWT_SECRET"),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SmtpHost:      os.Getenv("SMTP_HOST"),
		SmtpPort:      port,
		SmtpUser:      os.Getenv("SMTP_USER"),
		SmtpPass:      os.Getenv("SMTP_PASS"),
		SmtpSender:    os.Getenv("SMTP_SENDER"),
	}

	if cfg.DataPath == "" {
		cfg.DataPath = "./data"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}

	expireMinutes := 30
	if v := os.Getenv("JWT_EXPIRE_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.New("FATAL: JWT_EXPIRE_MINUTES must be a positive integer")
		}
		expireMinutes = n
	}
	cfg.TokenTTL = time.Duration(expireMinutes) * time.Minute

	if cfg.JwtSecret == "" {
		return nil, errors.New("FATAL: JWT_SECRET environment variable is not set")
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil, errors.New("FATAL: ADMIN_EMAIL and ADMIN_PASSWORD environment variables are not set")
	}

	cfg.DatabaseFile = filepath.Join(cfg.DataPath, databaseFileName)

	return cfg, nil
}
