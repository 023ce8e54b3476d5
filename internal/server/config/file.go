package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/securelogin/internal/flagx"
	"github.com/dmitrijs2005/securelogin/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Durations use timex.Duration so
// both "30m" and integer nanoseconds are accepted. Absent fields keep the
// value they had before the file was read.
type FileConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	StoreDriver                  string         `json:"store_driver" yaml:"store_driver"`
	MongoURI                     string         `json:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase                string         `json:"mongo_database" yaml:"mongo_database"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	RedisURL                     string         `json:"redis_url" yaml:"redis_url"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration" yaml:"session_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	DefaultAdminPassword         string         `json:"default_admin_password" yaml:"default_admin_password"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	TrustedProxies               string         `json:"trusted_proxies" yaml:"trusted_proxies"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config (or $SECURELOGIN_CONFIG) into
// config. Files ending in .yaml or .yml are read as YAML, anything else as
// JSON. A missing or malformed file panics, as flag errors do.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StoreDriver, c.StoreDriver)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.DefaultAdminPassword, c.DefaultAdminPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.TrustedProxies, c.TrustedProxies)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionTokenValidityDuration.Duration != 0 {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
