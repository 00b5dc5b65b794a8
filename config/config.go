package config

import (
	"questlog/pkg/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	PublicBaseURL        string `mapstructure:"PUBLIC_BASE_URL"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	OIDCIssuerURL        string `mapstructure:"OIDC_ISSUER_URL"`
	OIDCClientID         string `mapstructure:"OIDC_CLIENT_ID"`
	CatalogBaseURL       string `mapstructure:"CATALOG_BASE_URL"`
	CatalogAPIKey        string `mapstructure:"CATALOG_API_KEY"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
}

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "PUBLIC_BASE_URL",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
		"CORS_ALLOW_ORIGINS",
		"OIDC_ISSUER_URL", "OIDC_CLIENT_ID",
		"CATALOG_BASE_URL", "CATALOG_API_KEY",
		"SCHEDULER_ENABLED",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	// Fall back to .env files when the environment is not already populated
	if viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST") {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config", "environment", config.Environment, "port", config.ServerPort)
	return config, nil
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.OIDCIssuerURL != "" && config.OIDCClientID == "" {
		return log.ErrMsg(
			"Fatal error: OIDC_CLIENT_ID required when OIDC_ISSUER_URL is set",
		)
	}

	if config.CatalogBaseURL != "" && config.CatalogAPIKey == "" {
		log.Warn("CATALOG_BASE_URL set without CATALOG_API_KEY, catalog requests will be unauthenticated")
	}

	return nil
}
