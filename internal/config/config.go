package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config holds the server settings.
// Values come from defaults, then the YAML file named by CONFIG_FILE, then
// environment variables.
type Config struct {
	Storage       string `yaml:"storage"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	RedisAddr     string `yaml:"redis_addr"`
	HTTPPort      string `yaml:"http_port"`

	JWTSecret     string `yaml:"jwt_secret"`
	OwnerUsername string `yaml:"owner_username"`
	OwnerPassword string `yaml:"owner_password"`

	DraftTTL   time.Duration `yaml:"draft_ttl"`
	ResultsTTL time.Duration `yaml:"results_ttl"`

	CORSAllowedOrigins string `yaml:"cors_allowed_origins"`
	CORSAllowedMethods string `yaml:"cors_allowed_methods"`
	CORSAllowedHeaders string `yaml:"cors_allowed_headers"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Storage:            StorageMongo,
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "surveydb",
		RedisAddr:          "localhost:6379",
		HTTPPort:           "8080",
		JWTSecret:          "super-secret-key-change-in-production",
		OwnerUsername:      "admin",
		OwnerPassword:      "password123",
		DraftTTL:           24 * time.Hour,
		ResultsTTL:         5 * time.Minute,
		CORSAllowedOrigins: "*",
		CORSAllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
		CORSAllowedHeaders: "Content-Type, Authorization",
	}
}

// Load builds the configuration from defaults, CONFIG_FILE and the environment
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable fallback
func (c *Config) Validate() error {
	if c.Storage != StorageMongo && c.Storage != StorageMemory {
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: jwt secret must not be empty")
	}
	if c.DraftTTL <= 0 {
		return fmt.Errorf("config: draft ttl must be positive")
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Storage = getEnv("STORAGE", c.Storage)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.RedisAddr = trimRedisScheme(getEnv("REDIS_URI", c.RedisAddr))
	c.HTTPPort = getEnv("PORT", c.HTTPPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.OwnerUsername = getEnv("OWNER_USERNAME", c.OwnerUsername)
	c.OwnerPassword = getEnv("OWNER_PASSWORD", c.OwnerPassword)
	c.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.CORSAllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.CORSAllowedMethods)
	c.CORSAllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.CORSAllowedHeaders)

	var err error
	if c.DraftTTL, err = getEnvDuration("DRAFT_TTL", c.DraftTTL); err != nil {
		return err
	}
	if c.ResultsTTL, err = getEnvDuration("RESULTS_TTL", c.ResultsTTL); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

// trimRedisScheme removes a redis:// prefix, go-redis wants host:port
func trimRedisScheme(addr string) string {
	if len(addr) > 8 && addr[:8] == "redis://" {
		return addr[8:]
	}
	return addr
}
