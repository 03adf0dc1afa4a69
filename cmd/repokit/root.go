package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/repokit/internal/cliconfig"
	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/repository"
)

// cli holds state shared by every subcommand of one invocation.
type cli struct {
	cfg     cliconfig.Config
	cfgPath  string
	envPath  string
	strategy string

	out    io.Writer
	errOut io.Writer
	logger log.Logger

	deps *deps
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{
		cfg:    cliconfig.DefaultConfig(),
		out:    out,
		errOut: errOut,
		logger: log.NoopLogger{},
	}

	root := &cobra.Command{
		Use:           "repokit",
		Short:         "Read and write notes through a pluggable data-access strategy",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.repokit/config.toml)")
	f.StringVar(&c.envPath, "env-file", ".env", "dotenv file with REPOKIT_* variables")

	f.StringVar(&c.cfg.ServiceURL, "service-url", c.cfg.ServiceURL, "base URL of the notes service")
	f.StringVar(&c.cfg.Resource, "resource", c.cfg.Resource, "collection name on the service and in the cache")
	f.StringVar(&c.cfg.AuthKey, "auth-key", c.cfg.AuthKey, "API key sent as a bearer token")
	f.StringVar(&c.strategy, "strategy", c.cfg.Strategy.String(), "remote-only, local-only, remote-with-local-cache or local-with-remote-fallback")

	f.StringVar(&c.cfg.CacheBackend, "cache", c.cfg.CacheBackend, "local cache backend: file, memory or redis")
	f.StringVar(&c.cfg.CacheDir, "cache-dir", c.cfg.CacheDir, "directory of the file cache (default: $HOME/.repokit/cache)")
	f.StringVar(&c.cfg.RedisURL, "redis-url", c.cfg.RedisURL, "redis URL for the redis cache backend")

	f.DurationVar(&c.cfg.HTTPTimeout, "timeout", c.cfg.HTTPTimeout, "HTTP timeout")
	f.DurationVar(&c.cfg.MirrorTimeout, "mirror-timeout", c.cfg.MirrorTimeout, "bound on a best-effort cache write (0 disables)")
	f.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		newListCmd(c),
		newGetCmd(c),
		newCreateCmd(c),
		newUpdateCmd(c),
		newDeleteCmd(c),
		newSearchCmd(c),
		newPageCmd(c),
		newSyncCmd(c),
	)
	return root
}

// loadConfig layers defaults, the TOML file, the environment and flags, in
// increasing order of precedence.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if changed["strategy"] {
		st, err := repository.ParseStrategy(c.strategy)
		if err != nil {
			return err
		}
		c.cfg.Strategy = st
	}

	if err := cliconfig.LoadDotEnv(c.envPath); err != nil {
		return err
	}

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	level, _ := log.ParseLevel(c.cfg.LogLevel)
	c.logger = log.NewZerologAdapterTo(c.errOut, level)

	logCfg := c.cfg
	if logCfg.AuthKey != "" {
		logCfg.AuthKey = "*****"
	}
	c.logger.Debug("configuration", log.Config(logCfg))
	return nil
}

// wire builds the repository and its collaborators on first use.
func (c *cli) wire(ctx context.Context) (*deps, error) {
	if c.deps != nil {
		return c.deps, nil
	}
	d, err := build(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.deps = d
	return d, nil
}

func (c *cli) close() error {
	if c.deps == nil {
		return nil
	}
	err := c.deps.close()
	c.deps = nil
	return err
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
