package objectclient

import (
	"errors"
	"fmt"
	"strings"
)

// Key strategies understood by StorageConfig.KeyStrategy.
const (
	KeyStrategyTimestamp     = "timestamp"
	KeyStrategyTimestampUUID = "timestamp-uuid"
)

// Defaults applied when the caller leaves a value empty.
const (
	DefaultFolder    = "uploads"
	DefaultListLimit = 50
)

// MaxListLimit is the largest page S3 returns from one ListObjectsV2 call.
const MaxListLimit = 1000

// StorageConfig holds the settings needed to reach a bucket.
type StorageConfig struct {
	Region          string `mapstructure:"region" json:"region"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"secretAccessKey"`
	BucketName      string `mapstructure:"bucket_name" json:"bucketName"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `mapstructure:"endpoint" json:"endpoint,omitempty"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `mapstructure:"force_path_style" json:"forcePathStyle,omitempty"`

	// KeyStrategy selects how object keys are generated. Empty means timestamp.
	KeyStrategy string `mapstructure:"key_strategy" json:"keyStrategy,omitempty"`
}

// Validate checks that every required field is present.
func (c *StorageConfig) Validate() error {
	if c == nil {
		return configurationError(errors.New("config is nil"))
	}
	var errs []error
	if strings.TrimSpace(c.Region) == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		errs = append(errs, errors.New("accessKeyId is required"))
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		errs = append(errs, errors.New("secretAccessKey is required"))
	}
	if strings.TrimSpace(c.BucketName) == "" {
		errs = append(errs, errors.New("bucketName is required"))
	}
	switch c.KeyStrategy {
	case "", KeyStrategyTimestamp, KeyStrategyTimestampUUID:
	default:
		errs = append(errs, fmt.Errorf("unknown key strategy %q", c.KeyStrategy))
	}
	if len(errs) > 0 {
		return configurationError(errors.Join(errs...))
	}
	return nil
}
