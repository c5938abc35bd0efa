package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts Go duration strings ("15m") or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch x := v.(type) {
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		d.Duration = parsed
	case float64:
		d.Duration = time.Duration(x)
	case int:
		d.Duration = time.Duration(x)
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// fileConfig is the on-disk shape. Pointer fields distinguish "absent" from
// the zero value so a partial file only overrides what it names.
type fileConfig struct {
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrOps  *string `json:"endpoint_addr_ops" yaml:"endpoint_addr_ops"`

	DatabaseDriver *string `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN    *string `json:"database_dsn" yaml:"database_dsn"`
	MigrateOnStart *bool   `json:"migrate_on_start" yaml:"migrate_on_start"`

	SecretKey *string `json:"secret_key" yaml:"secret_key"`

	LogLevel       *string `json:"log_level" yaml:"log_level"`
	LogFormat      *string `json:"log_format" yaml:"log_format"`
	TracingEnabled *bool   `json:"tracing_enabled" yaml:"tracing_enabled"`

	S3RootUser     *string   `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword *string   `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket       *string   `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       *string   `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint *string   `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PresignTTL   *Duration `json:"s3_presign_ttl" yaml:"s3_presign_ttl"`
}

// parseFile overlays the JSON or YAML file at path, chosen by extension.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&cfg.EndpointAddrOps, fc.EndpointAddrOps)
	setString(&cfg.DatabaseDriver, fc.DatabaseDriver)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setBool(&cfg.MigrateOnStart, fc.MigrateOnStart)
	setString(&cfg.SecretKey, fc.SecretKey)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setBool(&cfg.TracingEnabled, fc.TracingEnabled)
	setString(&cfg.S3RootUser, fc.S3RootUser)
	setString(&cfg.S3RootPassword, fc.S3RootPassword)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
	if fc.S3PresignTTL != nil {
		cfg.S3PresignTTL = fc.S3PresignTTL.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
