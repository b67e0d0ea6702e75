package main

import (
	"time"

	"github.com/myrjola/formtree/internal/envstruct"
	"github.com/myrjola/formtree/internal/errors"
	"github.com/spf13/cobra"
)

type config struct {
	// CacheURL is the SQLite database holding the local cache.
	CacheURL string `env:"FORMTREE_CACHE_URL" envDefault:"./formtree-cache.sqlite"`
	// RemoteURL is the base URL of the form server.
	RemoteURL string `env:"FORMTREE_REMOTE_URL" envDefault:"http://localhost:5000"`
	// PushTimeout bounds each remote write and the wait for pending writes before exit.
	PushTimeout time.Duration `env:"FORMTREE_PUSH_TIMEOUT" envDefault:"5s"`
	Verbose     bool          `env:"FORMTREE_VERBOSE" envDefault:"false"`
}

const (
	flagCache       = "cache"
	flagRemote      = "remote"
	flagPushTimeout = "push-timeout"
	flagVerbose     = "verbose"
)

func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(flagCache, "", "local cache database (overrides FORMTREE_CACHE_URL)")
	cmd.PersistentFlags().String(flagRemote, "", "form server URL (overrides FORMTREE_REMOTE_URL)")
	cmd.PersistentFlags().Duration(flagPushTimeout, 0, "remote write timeout (overrides FORMTREE_PUSH_TIMEOUT)")
	cmd.PersistentFlags().BoolP(flagVerbose, "v", false, "log debug output to stderr")
}

// resolveConfig reads the environment and lets explicitly set flags take precedence.
func resolveConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (config, error) {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return cfg, errors.Wrap(err, "populate config")
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed(flagCache) {
		if cfg.CacheURL, err = flags.GetString(flagCache); err != nil {
			return cfg, errors.Wrap(err, "read flag")
		}
	}
	if flags.Changed(flagRemote) {
		if cfg.RemoteURL, err = flags.GetString(flagRemote); err != nil {
			return cfg, errors.Wrap(err, "read flag")
		}
	}
	if flags.Changed(flagPushTimeout) {
		if cfg.PushTimeout, err = flags.GetDuration(flagPushTimeout); err != nil {
			return cfg, errors.Wrap(err, "read flag")
		}
	}
	if flags.Changed(flagVerbose) {
		if cfg.Verbose, err = flags.GetBool(flagVerbose); err != nil {
			return cfg, errors.Wrap(err, "read flag")
		}
	}
	return cfg, nil
}
