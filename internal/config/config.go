// Package config resolves server settings from flags, environment variables
// and an optional .env file. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that provide flag defaults.
const (
	EnvDB                  = "ASSETDESK_DB"
	EnvAddr                = "ASSETDESK_ADDR"
	EnvAdminUser           = "ASSETDESK_ADMIN_USER"
	EnvAdminLocation       = "ASSETDESK_ADMIN_LOCATION"
	EnvLog                 = "ASSETDESK_LOG"
	EnvLogLevel            = "ASSETDESK_LOG_LEVEL"
	EnvAdminBypassLocation = "ASSETDESK_ADMIN_BYPASS_LOCATION"
)

// Config holds the server settings.
type Config struct {
	DBPath              string
	Addr                string
	AdminUser           string
	AdminLocation       string
	LogPath             string
	LogLevel            slog.Level
	AdminBypassLocation bool
}

const usage = `Usage: assetdesk [flags]

Flags:
  -d, -db <path>             SQLite database path (default: assetdesk.sqlite3)
  -a, -addr <host:port>      listen address (default: :8080)
  -u, -user <name>           admin username on first run (default: Admin)
      -location <name>       admin location on first run (default: HQ)
  -l, -log <path>            log file path (default: no file, stdout/stderr only)
      -log-level <level>     minimum log level: debug, info, warn, error (default: info)
      -admin-bypass-location let admins act on assets of any location
  -h, -help                  show this help and exit

Each flag defaults to its environment variable:
  ASSETDESK_DB, ASSETDESK_ADDR, ASSETDESK_ADMIN_USER, ASSETDESK_ADMIN_LOCATION,
  ASSETDESK_LOG, ASSETDESK_LOG_LEVEL, ASSETDESK_ADMIN_BYPASS_LOCATION
`

// LoadDotEnv loads path into the process environment. Variables that are
// already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Parse resolves the configuration from command-line args, with lookupEnv
// (usually os.LookupEnv) providing defaults. It returns flag.ErrHelp when
// help was requested.
func Parse(args []string, lookupEnv func(string) (string, bool), out io.Writer) (*Config, error) {
	env := func(key, fallback string) string {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v
		}
		return fallback
	}

	bypass := false
	if v, ok := lookupEnv(EnvAdminBypassLocation); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvAdminBypassLocation, v, err)
		}
		bypass = b
	}

	var level slog.Level
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvLogLevel, v, err)
		}
	}

	cfg := &Config{}
	fset := flag.NewFlagSet("assetdesk", flag.ContinueOnError)
	fset.SetOutput(out)

	dbDefault := env(EnvDB, "assetdesk.sqlite3")
	fset.StringVar(&cfg.DBPath, "db", dbDefault, "")
	fset.StringVar(&cfg.DBPath, "d", dbDefault, "")

	addrDefault := env(EnvAddr, ":8080")
	fset.StringVar(&cfg.Addr, "addr", addrDefault, "")
	fset.StringVar(&cfg.Addr, "a", addrDefault, "")

	userDefault := env(EnvAdminUser, "Admin")
	fset.StringVar(&cfg.AdminUser, "user", userDefault, "")
	fset.StringVar(&cfg.AdminUser, "u", userDefault, "")

	fset.StringVar(&cfg.AdminLocation, "location", env(EnvAdminLocation, "HQ"), "")

	logDefault := env(EnvLog, "")
	fset.StringVar(&cfg.LogPath, "log", logDefault, "")
	fset.StringVar(&cfg.LogPath, "l", logDefault, "")

	fset.TextVar(&cfg.LogLevel, "log-level", level, "")

	fset.BoolVar(&cfg.AdminBypassLocation, "admin-bypass-location", bypass, "")

	fset.Usage = func() { fmt.Fprint(out, usage) }

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		fset.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}
	return cfg, nil
}
