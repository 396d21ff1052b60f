package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig selects the persistence driver. "mongo" is the production
// driver; "jsonfile" keeps everything in three local JSON files.
type StorageConfig struct {
	Driver         string `mapstructure:"driver"`
	URI            string `mapstructure:"uri"`  // Mongo connection URI
	Name           string `mapstructure:"name"` // Mongo database name
	Dir            string `mapstructure:"dir"`  // jsonfile data directory
	DegradedWrites bool   `mapstructure:"degraded_writes"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type OpenAIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type YouTubeConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type GitHubConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ArchiveConfig configures the optional S3 learning-path snapshot archive.
// Archiving is disabled when bucket_name is empty.
type ArchiveConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

// EnrichConfig carries the per-unit, per-category resource caps.
type EnrichConfig struct {
	VideoLimit int `mapstructure:"video_limit"`
	RepoLimit  int `mapstructure:"repo_limit"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Env override: storage.uri -> STORAGE_URI, openai.api_key -> OPENAI_API_KEY
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("storage.driver", "mongo")
	viper.SetDefault("storage.uri", "mongodb://localhost:27017")
	viper.SetDefault("storage.name", "learning_app")
	viper.SetDefault("storage.dir", "data")
	viper.SetDefault("storage.degraded_writes", false)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("openai.base_url", "https://api.openai.com")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.timeout", "120s")
	viper.SetDefault("openai.max_retries", 3)
	viper.SetDefault("github.base_url", "https://api.github.com")
	viper.SetDefault("redis.ttl", "15m")
	viper.SetDefault("enrich.video_limit", 3)
	viper.SetDefault("enrich.repo_limit", 2)

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
