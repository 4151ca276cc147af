package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/episodic/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the dictionary page cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [url...]",
	Short: "Remove cached pages",
	Long: `Remove cached dictionary and transcript pages.

Without arguments the whole cache is cleared. With URLs only those pages
are dropped, so the next build fetches them again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Cache.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled; nothing to clear")
			return nil
		}
		return clearCache(cmd.OutOrStdout(), cache.New(cfg.Cache), args)
	},
}

func clearCache(w io.Writer, c cache.Cache, urls []string) error {
	if len(urls) == 0 {
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintln(w, "✓ Cache cleared")
		return nil
	}
	for _, u := range urls {
		if err := c.Delete(cache.PageKey(u)); err != nil {
			return fmt.Errorf("remove %s: %w", u, err)
		}
	}
	fmt.Fprintf(w, "✓ Removed %d page(s) from cache\n", len(urls))
	return nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
