package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/poagraph/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the local result cache",
		Long: `Inspect or empty the local result cache.

Only file caches can be managed here. Redis and MongoDB entries expire on
their own.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached alignment",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return c.clearCache() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where results are cached",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				where, err := c.cacheLocation()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), where)
				return nil
			},
		},
	)
	return cmd
}

func (c *CLI) clearCache() error {
	where, err := c.cacheLocation()
	if err != nil {
		return err
	}
	if strings.Contains(where, "://") || where == "none" {
		printWarning("Not a file cache, nothing to clear")
		printDetail("Backend: %s", where)
		return nil
	}
	if _, err := os.Stat(where); errors.Is(err, os.ErrNotExist) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(where)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear %s: %w", fc.Dir(), err)
	}
	printSuccess("Removed %d cached results", n)
	printDetail("Directory: %s", fc.Dir())
	return nil
}

// cacheLocation resolves --cache to a directory for file caches, or returns
// the backend URL unchanged.
func (c *CLI) cacheLocation() (string, error) {
	if dir, ok := strings.CutPrefix(c.cacheURL, "file://"); ok {
		return dir, nil
	}
	if c.cacheURL != "" {
		return c.cacheURL, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache directory: %w", err)
	}
	return dir, nil
}
