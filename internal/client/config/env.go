package config

import "os"

// Environment variables holding secrets. They override the config file so
// credentials need not be written to disk.
const (
	EnvPinataJWT       = "DEDIARY_PINATA_JWT"
	EnvS3SecretKey     = "DEDIARY_S3_SECRET_KEY"
	EnvClassifierToken = "DEDIARY_CLASSIFIER_TOKEN"
	EnvMintToken       = "DEDIARY_MINT_TOKEN"
)

func parseEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		EnvPinataJWT:       &cfg.PinataJWT,
		EnvS3SecretKey:     &cfg.S3SecretKey,
		EnvClassifierToken: &cfg.ClassifierToken,
		EnvMintToken:       &cfg.MintToken,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
}
