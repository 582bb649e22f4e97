// Package config loads the service configuration from .env and the environment.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/markdave123-py/s3handler/pkg/objectclient"
)

const (
	defaultRequestTimeout       = 60 * time.Second
	defaultMaxFileSize    int64 = 20 << 20
	defaultMaxFiles             = 20
	defaultMaxPartSize    int64 = 64 << 20
)

type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	MaxFileSize    int64
	MaxFiles       int
	MaxPartSize    int64
	AllowedOrigins []string

	Storage objectclient.StorageConfig
}

// Load reads .env (if present) and the environment. It does not validate the
// storage settings; that happens when the object client is configured.
func Load() *Config {
	_ = godotenv.Load()
	return fromViper(viper.New())
}

func fromViper(v *viper.Viper) *Config {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("REQUEST_TIMEOUT", defaultRequestTimeout.String())
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", defaultMaxFileSize)
	v.SetDefault("UPLOAD_MAX_FILES", defaultMaxFiles)
	v.SetDefault("UPLOAD_MAX_PART_SIZE", defaultMaxPartSize)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("S3_KEY_STRATEGY", objectclient.KeyStrategyTimestamp)
	v.SetDefault("S3_FORCE_PATH_STYLE", false)

	v.AutomaticEnv()

	return &Config{
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		RequestTimeout: orDefault(parseTimeout(v.GetString("REQUEST_TIMEOUT")), defaultRequestTimeout),
		MaxFileSize:    orDefault(v.GetInt64("UPLOAD_MAX_FILE_SIZE"), defaultMaxFileSize),
		MaxFiles:       orDefault(v.GetInt("UPLOAD_MAX_FILES"), defaultMaxFiles),
		MaxPartSize:    orDefault(v.GetInt64("UPLOAD_MAX_PART_SIZE"), defaultMaxPartSize),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Storage: objectclient.StorageConfig{
			Region:          v.GetString("AWS_REGION"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("AWS_BUCKET_NAME"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			ForcePathStyle:  v.GetBool("S3_FORCE_PATH_STYLE"),
			KeyStrategy:     v.GetString("S3_KEY_STRATEGY"),
		},
	}
}

// parseTimeout accepts a Go duration or a bare number of seconds. Anything else is zero.
func parseTimeout(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return 0
}

// orDefault replaces unparsable or non-positive settings, which viper reports as zero.
func orDefault[T int | int64 | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
