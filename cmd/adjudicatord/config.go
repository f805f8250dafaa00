package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLogLevel        = "info"
	defaultLogDirname       = "logs"
	defaultStorageBackend  = "mem"
	defaultListenAddr      = "localhost:9735"
	defaultAdminTokenTTLs  = 3600
	defaultRateLimit       = 50
	defaultRateBurst       = 10
)

func defaultDataDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".adjudicatord")
}

// config is the daemon's configuration, loaded the way lnd.go's
// config is: a jessevdk/go-flags struct parsed from the command line,
// with defaults pre-populated before parsing. No config file is read.
type config struct {
	DataDir string `long:"datadir" description:"Directory to store the adjudicator's persistent state in"`
	LogDir  string `long:"logdir" description:"Directory to store log files in"`
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}"`

	ListenAddr string `long:"listen" description:"Address the HTTP+JSON API server listens on"`

	StorageBackend string `long:"storage" description:"Persistence backend to use {mem, bbolt, sqlite}"`

	RateLimit int `long:"ratelimit" description:"Outbound ledger queries allowed per second"`
	RateBurst int `long:"rateburst" description:"Outbound ledger query burst allowance"`

	AdminTokenTTLSeconds int `long:"admintokenttl" description:"Validity window in seconds for minted admin macaroons"`
}

func defaultConfig() config {
	return config{
		DataDir:              defaultDataDir(),
		LogDir:               defaultLogDirname,
		LogLevel:             defaultLogLevel,
		ListenAddr:           defaultListenAddr,
		StorageBackend:       defaultStorageBackend,
		RateLimit:            defaultRateLimit,
		RateBurst:            defaultRateBurst,
		AdminTokenTTLSeconds: defaultAdminTokenTTLs,
	}
}

// loadConfig parses command-line flags over top of defaultConfig(),
// mirroring lnd.go's loadConfig: defaults first, flags override.
func loadConfig() (*config, error) {
	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	switch cfg.StorageBackend {
	case "mem", "bbolt", "sqlite":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	return &cfg, nil
}
