// Package config loads runtime configuration for the DeDiary CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via flags: -c or -config.
//     Files ending in .yaml/.yml are YAML, others JSON.
//  3. Secret overrides from the environment: DEDIARY_PINATA_JWT,
//     DEDIARY_S3_SECRET_KEY, DEDIARY_CLASSIFIER_TOKEN, DEDIARY_MINT_TOKEN.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   local database path
//	-p string   pinning provider (pinata, s3)
//	-g string   comma separated gateway base URLs
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-w string   wallet address
//	-n string   display name
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so values can be either strings like "15s"
// or integer nanoseconds:
//
//	{
//	  "database_path": "dediary.db",
//	  "pinning_provider": "pinata",
//	  "gateways": ["https://ipfs.io/ipfs", "https://dweb.link/ipfs"],
//	  "request_timeout": "15s",
//	  "online_check_interval": "10s",
//	  "wallet_addresses": ["addr1..."],
//	  "fallback_on_empty_remote": true
//	}
package config
