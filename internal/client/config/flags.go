package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/dediary/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the local database file
//	-p string   pinning provider: pinata or s3
//	-g string   comma separated gateway base URLs, in the order to try
//	-t int      request timeout in seconds
//	-i int      online check interval in seconds
//	-w string   wallet address
//	-n string   display name
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-p", "-g", "-t", "-i", "-w", "-n", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	fs.StringVar(&cfg.PinningProvider, "p", cfg.PinningProvider, "pinning provider (pinata or s3)")
	fs.Var(flagx.ListValue{Items: &cfg.Gateways}, "g", "comma separated gateway base URLs")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	wallet := fs.String("w", "", "wallet address")
	fs.StringVar(&cfg.DisplayName, "n", cfg.DisplayName, "display name")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PinningProvider = strings.ToLower(cfg.PinningProvider)
	// only explicit flags override durations, file values may be sub-second
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	if *wallet != "" {
		cfg.WalletAddresses = []string{*wallet}
	}
}
