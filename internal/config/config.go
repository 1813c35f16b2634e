package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Digest    DigestConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Backup    BackupConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

// DataConfig locates the two flat JSON documents. Seed controls whether an
// empty catalog is populated with the sample cross-product on first run.
type DataConfig struct {
	Dir          string
	CatalogFile  string `mapstructure:"catalog_file"`
	ProfilesFile string `mapstructure:"profiles_file"`
	// QuizFile optionally overlays the built-in quiz bank; empty disables it.
	QuizFile string `mapstructure:"quiz_file"`
	Seed     bool
}

type DigestConfig struct {
	Enabled bool
	// Schedule is a cron spec; the default fires daily at 08:00 server time.
	Schedule string
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// BackupConfig points snapshots at a MinIO bucket. Backups are disabled
// while Endpoint is empty.
type BackupConfig struct {
	Endpoint  string
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string
	UseSSL    bool `mapstructure:"use_ssl"`
}

func (d DataConfig) CatalogPath() string {
	return filepath.Join(d.Dir, d.CatalogFile)
}

func (d DataConfig) ProfilesPath() string {
	return filepath.Join(d.Dir, d.ProfilesFile)
}

func (d DataConfig) QuizPath() string {
	if d.QuizFile == "" {
		return ""
	}
	return filepath.Join(d.Dir, d.QuizFile)
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("STUDYBOT")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.catalog_file", "materials.json")
	viper.SetDefault("data.profiles_file", "users.json")
	viper.SetDefault("data.seed", true)
	viper.SetDefault("digest.enabled", true)
	viper.SetDefault("digest.schedule", "0 8 * * *")
	viper.SetDefault("rate_limit.max_requests", 600)
	viper.SetDefault("rate_limit.window_minutes", 1)

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")
	viper.BindEnv("data.dir", "DATA_DIR")
	viper.BindEnv("digest.schedule", "DIGEST_SCHEDULE")
	viper.BindEnv("backup.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("backup.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("backup.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("backup.bucket", "MINIO_BUCKET")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.Data.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}
