package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidcheck/internal/verdictstore"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the verdict cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show verdict cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := openVerdictStore(cmd, ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, stats)
			}
			const stampLayout = "2006-01-02 15:04"
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Driver:   %s\n", stats.Driver)
			fmt.Fprintf(out, "Location: %s\n", stats.Location)
			fmt.Fprintf(out, "Entries:  %d\n", stats.Entries)
			if stats.Entries > 0 {
				fmt.Fprintf(out, "Oldest:   %s\n", stats.Oldest.Local().Format(stampLayout))
				fmt.Fprintf(out, "Newest:   %s\n", stats.Newest.Local().Format(stampLayout))
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := openVerdictStore(cmd, ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Verdict cache already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached verdicts\n", removed)
			return nil
		},
	}
}

func openVerdictStore(cmd *cobra.Command, ctx *commandContext) (verdictstore.Store, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Cache.Enabled {
		return nil, "Verdict cache is disabled (set cache.enabled = true in config.toml)", nil
	}
	store, err := verdictstore.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, "", fmt.Errorf("open verdict store: %w", err)
	}
	return store, "", nil
}
