package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	defaultEnv              = "dev"
	defaultDBPath           = "./burritos.db"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultTimezone         = "America/Mexico_City"
	defaultReconcileCron    = "5 0 * * *"
	defaultWeeklyReportCron = "0 20 * * 5"
	defaultReportWeeks      = 4
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env              string
	DBPath           string
	Port             string
	LogLevel         string
	Timezone         string
	ReconcileCron    string
	WeeklyReportCron string
	ReportWeeks      int
	SeedDefaults     bool
}

// Load reads environment variables, optionally seeded from envFile, and returns
// a validated Config. A missing env file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	weeks, err := getenvInt("REPORT_WEEKS", defaultReportWeeks)
	if err != nil {
		return Config{}, err
	}
	seed, err := getenvBool("SEED_DEFAULTS", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:              strings.ToLower(getenvWithDefault("APP_ENV", defaultEnv)),
		DBPath:           getenvWithDefault("DB_PATH", defaultDBPath),
		Port:             getenvWithDefault("PORT", defaultPort),
		LogLevel:         getenvWithDefault("LOG_LEVEL", defaultLogLevel),
		Timezone:         getenvWithDefault("TIMEZONE", defaultTimezone),
		ReconcileCron:    getenvWithDefault("STATE_RECONCILE_CRON", defaultReconcileCron),
		WeeklyReportCron: getenvWithDefault("WEEKLY_REPORT_CRON", defaultWeeklyReportCron),
		ReportWeeks:      weeks,
		SeedDefaults:     seed,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configuration the server cannot start with.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if c.Env != "dev" && c.Env != "prod" {
		return fmt.Errorf("APP_ENV must be dev or prod, got %q", c.Env)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.ReportWeeks <= 0 {
		return fmt.Errorf("REPORT_WEEKS must be positive, got %d", c.ReportWeeks)
	}
	for key, spec := range map[string]string{
		"STATE_RECONCILE_CRON": c.ReconcileCron,
		"WEEKLY_REPORT_CRON":   c.WeeklyReportCron,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s %q: %w", key, spec, err)
		}
	}
	return nil
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// Location resolves the configured timezone. Validate has already checked it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}
