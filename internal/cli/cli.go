package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poagraph/pkg/buildinfo"
	"github.com/matzehuels/poagraph/pkg/cache"
	"github.com/matzehuels/poagraph/pkg/config"
	"github.com/matzehuels/poagraph/pkg/observability"
	"github.com/matzehuels/poagraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "poagraph"

	// resultVersion scopes cache keys; bump it when cached result encoding changes.
	resultVersion = "v1"

	// configFileName is looked up in the config directory when --config is unset.
	configFileName = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cacheURL   string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "poagraph aligns DNA sequences with partial-order alignment",
		Long: `poagraph folds DNA sequences into a partial-order alignment graph and
extracts a multiple sequence alignment, a consensus sequence, or a
diagram of the graph itself.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		observability.Register(observability.LogHooks{Logger: c.Logger})
		return nil
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: "+filepath.Join("$XDG_CONFIG_HOME", appName, configFileName)+")")
	pf.StringVar(&c.cacheURL, "cache", "", "cache backend: file://DIR, redis://..., mongodb://..., or none")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable result caching")

	root.AddCommand(c.msaCommand())
	root.AddCommand(c.consensusCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, appName+":"+resultVersion+":"), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.cacheURL, dir)
}

// loadConfig reads --config, or the default config file if present, or
// falls back to the built-in defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	dir, err := configDir()
	if err != nil {
		return config.Default(), nil
	}
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	c.Logger.Debug("using config", "path", path)
	return config.Load(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/poagraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/poagraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
