package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	ProviderPinata = "pinata"
	ProviderS3     = "s3"
)

// Config holds runtime settings for the DeDiary CLI.
type Config struct {
	DatabasePath string

	PinningProvider string
	PinataAPIURL    string
	PinataJWT       string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string

	// Gateways are tried in order; the on-device cache is always consulted first.
	Gateways         []string
	PreferredGateway string

	RequestTimeout      time.Duration
	FetchConcurrency    int
	MaxDocumentBytes    int64
	OnlineCheckInterval time.Duration

	ClassifierURL   string
	ClassifierToken string
	MintURL         string
	MintToken       string

	WalletAddresses []string
	NetworkID       int
	DisplayName     string

	FallbackOnEmptyRemote bool
	UnpinSuperseded       bool

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "dediary.db"
	c.PinningProvider = ProviderPinata
	c.PinataAPIURL = "https://api.pinata.cloud"
	c.S3Region = "us-east-1"
	c.Gateways = []string{
		"https://gateway.pinata.cloud/ipfs",
		"https://ipfs.io/ipfs",
		"https://dweb.link/ipfs",
	}
	c.RequestTimeout = 15 * time.Second
	c.FetchConcurrency = 8
	c.MaxDocumentBytes = 1 << 20
	c.OnlineCheckInterval = 10 * time.Second
	c.NetworkID = 1
	c.FallbackOnEmptyRemote = true
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given), the environment and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings that make the client unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is empty"))
	}
	switch c.PinningProvider {
	case ProviderPinata:
	case ProviderS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3_bucket is required for the s3 provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown pinning_provider %q", c.PinningProvider))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, errors.New("online_check_interval must be positive"))
	}
	if c.FetchConcurrency <= 0 {
		errs = append(errs, errors.New("fetch_concurrency must be positive"))
	}
	if c.MaxDocumentBytes < 0 {
		errs = append(errs, errors.New("max_document_bytes must not be negative"))
	}

	return errors.Join(errs...)
}
