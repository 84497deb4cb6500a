package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depharvest/pkg/cache"
	"github.com/matzehuels/depharvest/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "depharvest"

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization
// with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOpts holds the persistent flags shared by all commands.
type rootOpts struct {
	verbose    bool
	configPath string
	noCache    bool
}

// Execute runs the depharvest CLI and returns an error if any command
// fails. This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI under the given context, so command
// execution stops when the context is cancelled (e.g. on SIGINT).
func ExecuteContext(ctx context.Context) error {
	var opts rootOpts

	root := &cobra.Command{
		Use:          appName,
		Short:        "Depharvest extracts dependency manifests from GitLab repositories",
		Long:         `Depharvest enumerates a GitLab repository tree, fetches its dependency manifests in batches, and extracts the declared dependency names per language ecosystem.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/depharvest/config.toml)")
	root.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "bypass the response cache")

	root.AddCommand(newHarvestCmd(&opts))
	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd(&opts))
	root.AddCommand(newCacheCmd(&opts))
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// loadConfig reads the configured or default config file.
func (o *rootOpts) loadConfig() (config.Config, error) {
	path := o.configPath
	if path == "" {
		if def, err := config.DefaultPath(); err == nil {
			path = def
		}
	}
	return config.Load(path)
}

// openCache constructs the cache backend, honoring --no-cache. A config
// without an explicit backend gets the file cache under the XDG cache
// directory, matching typical CLI expectations.
func (o *rootOpts) openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if o.noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.BackendNone {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return cfg.OpenCache(ctx)
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/depharvest/).
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
