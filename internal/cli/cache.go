package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/badgeforge/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the rendered badge cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached badges",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return clearCache() },
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show cache location, entry count and size",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return showCache() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

// openFileCache opens the CLI cache directory, reporting ok=false when it
// has never been created.
func openFileCache() (fc *cache.FileCache, dir string, ok bool, err error) {
	dir, err = cacheDir()
	if err != nil {
		return nil, "", false, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, dir, false, nil
	}
	fc, err = cache.NewFileCache(dir)
	return fc, dir, err == nil, err
}

func clearCache() error {
	fc, dir, ok, err := openFileCache()
	if err != nil || !ok {
		if err == nil {
			printInfo("Cache is empty")
		}
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached badges", n)
	printDetail("Directory: %s", dir)
	return nil
}

func showCache() error {
	fc, dir, ok, err := openFileCache()
	if err != nil {
		return err
	}
	printKeyValue("Directory", dir)
	if !ok {
		printKeyValue("Entries", "0")
		return nil
	}
	n, size, err := fc.Usage()
	if err != nil {
		return err
	}
	printKeyValue("Entries", fmt.Sprint(n))
	printKeyValue("Size", formatBytes(int(size)))
	return nil
}
