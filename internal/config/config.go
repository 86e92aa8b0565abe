// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Logging LoggingConfig
	Server  ServerConfig
	VTuber  VTuberConfig
	U2      U2Config
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// MongoDBConfig contains document store connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// RedisConfig contains cache store connection configuration.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// VTuberConfig contains settings for the VTuber API surface.
type VTuberConfig struct {
	// AdminPassword guards the VTuberAdd mutation and cache flush.
	AdminPassword string
	// APIKeys guard the admin REST endpoints.
	APIKeys []string
}

// U2Config contains the U2 tracker scraper settings.
type U2Config struct {
	Passkey string
	Cookies string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 4200)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// MongoDB
	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "vtapi")
	viper.SetDefault("mongodb.connecttimeout", 10*time.Second)
	viper.SetDefault("mongodb.maxpoolsize", 25)

	// Redis
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// VTuber API
	viper.SetDefault("vtuber.adminpassword", "")
	viper.SetDefault("vtuber.apikeys", []string{})

	// Side features
	viper.SetDefault("u2.passkey", "")
	viper.SetDefault("u2.cookies", "")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
