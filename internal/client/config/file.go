package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/dediary/internal/flagx"
	"github.com/dmitrijs2005/dediary/internal/timex"
)

// FileConfig is a DTO used exclusively for config file unmarshalling.
// It relies on timex.Duration so files can specify intervals either as
// strings like "15s" or as integer nanoseconds. It is prefilled from the
// current Config so keys absent from the file keep their values.
type FileConfig struct {
	DatabasePath string `json:"database_path" yaml:"database_path"`

	PinningProvider string `json:"pinning_provider" yaml:"pinning_provider"`
	PinataAPIURL    string `json:"pinata_api_url" yaml:"pinata_api_url"`
	PinataJWT       string `json:"pinata_jwt" yaml:"pinata_jwt"`
	S3Endpoint      string `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region        string `json:"s3_region" yaml:"s3_region"`
	S3Bucket        string `json:"s3_bucket" yaml:"s3_bucket"`
	S3AccessKey     string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key" yaml:"s3_secret_key"`

	Gateways         []string `json:"gateways" yaml:"gateways"`
	PreferredGateway string   `json:"preferred_gateway" yaml:"preferred_gateway"`

	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	FetchConcurrency    int            `json:"fetch_concurrency" yaml:"fetch_concurrency"`
	MaxDocumentBytes    int64          `json:"max_document_bytes" yaml:"max_document_bytes"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`

	ClassifierURL   string `json:"classifier_url" yaml:"classifier_url"`
	ClassifierToken string `json:"classifier_token" yaml:"classifier_token"`
	MintURL         string `json:"mint_url" yaml:"mint_url"`
	MintToken       string `json:"mint_token" yaml:"mint_token"`

	WalletAddresses []string `json:"wallet_addresses" yaml:"wallet_addresses"`
	NetworkID       int      `json:"network_id" yaml:"network_id"`
	DisplayName     string   `json:"display_name" yaml:"display_name"`

	FallbackOnEmptyRemote bool `json:"fallback_on_empty_remote" yaml:"fallback_on_empty_remote"`
	UnpinSuperseded       bool `json:"unpin_superseded" yaml:"unpin_superseded"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

func fileConfigFrom(c *Config) FileConfig {
	return FileConfig{
		DatabasePath:          c.DatabasePath,
		PinningProvider:       c.PinningProvider,
		PinataAPIURL:          c.PinataAPIURL,
		PinataJWT:             c.PinataJWT,
		S3Endpoint:            c.S3Endpoint,
		S3Region:              c.S3Region,
		S3Bucket:              c.S3Bucket,
		S3AccessKey:           c.S3AccessKey,
		S3SecretKey:           c.S3SecretKey,
		Gateways:              c.Gateways,
		PreferredGateway:      c.PreferredGateway,
		RequestTimeout:        timex.Duration{Duration: c.RequestTimeout},
		FetchConcurrency:      c.FetchConcurrency,
		MaxDocumentBytes:      c.MaxDocumentBytes,
		OnlineCheckInterval:   timex.Duration{Duration: c.OnlineCheckInterval},
		ClassifierURL:         c.ClassifierURL,
		ClassifierToken:       c.ClassifierToken,
		MintURL:               c.MintURL,
		MintToken:             c.MintToken,
		WalletAddresses:       c.WalletAddresses,
		NetworkID:             c.NetworkID,
		DisplayName:           c.DisplayName,
		FallbackOnEmptyRemote: c.FallbackOnEmptyRemote,
		UnpinSuperseded:       c.UnpinSuperseded,
		LogLevel:              c.LogLevel,
		LogFormat:             c.LogFormat,
	}
}

func (fc FileConfig) apply(c *Config) {
	c.DatabasePath = fc.DatabasePath
	c.PinningProvider = strings.ToLower(fc.PinningProvider)
	c.PinataAPIURL = fc.PinataAPIURL
	c.PinataJWT = fc.PinataJWT
	c.S3Endpoint = fc.S3Endpoint
	c.S3Region = fc.S3Region
	c.S3Bucket = fc.S3Bucket
	c.S3AccessKey = fc.S3AccessKey
	c.S3SecretKey = fc.S3SecretKey
	c.Gateways = fc.Gateways
	c.PreferredGateway = fc.PreferredGateway
	c.RequestTimeout = fc.RequestTimeout.Duration
	c.FetchConcurrency = fc.FetchConcurrency
	c.MaxDocumentBytes = fc.MaxDocumentBytes
	c.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	c.ClassifierURL = fc.ClassifierURL
	c.ClassifierToken = fc.ClassifierToken
	c.MintURL = fc.MintURL
	c.MintToken = fc.MintToken
	c.WalletAddresses = fc.WalletAddresses
	c.NetworkID = fc.NetworkID
	c.DisplayName = fc.DisplayName
	c.FallbackOnEmptyRemote = fc.FallbackOnEmptyRemote
	c.UnpinSuperseded = fc.UnpinSuperseded
	c.LogLevel = fc.LogLevel
	c.LogFormat = fc.LogFormat
}

// parseFile overlays Config with values loaded from the file named by -c or
// -config. Files ending in .yaml or .yml are YAML, anything else is JSON.
// Panics on read or unmarshal errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := fileConfigFrom(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}
	fc.apply(cfg)
}
