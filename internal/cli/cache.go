package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depharvest/pkg/cache"
	"github.com/matzehuels/depharvest/pkg/config"
)

// newCacheCmd creates the cache management command.
func newCacheCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(newCacheClearCmd(root))
	cmd.AddCommand(newCachePathCmd())

	return cmd
}

// newCacheClearCmd creates the "cache clear" subcommand. It opens
// whichever backend the config selects and drops all of its entries.
func newCacheClearCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			backend, err := root.openCache(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open cache backend: %w", err)
			}
			defer backend.Close()

			clearer, ok := backend.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled, nothing to clear")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			name := cfg.Cache.Backend
			if name == config.BackendNone {
				name = config.BackendFile
			}
			printSuccess("Cleared the %s cache", name)
			if name == config.BackendFile {
				if dir, err := cachePath(cfg); err == nil {
					printDetail("Directory: %s", dir)
				}
			}
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cachePath(config.Default())
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cachePath resolves the on-disk cache directory: the configured file
// backend directory when set, the XDG default otherwise.
func cachePath(cfg config.Config) (string, error) {
	if cfg.Cache.Backend == config.BackendFile && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}
