package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				stats, err := a.store.Stats()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, "Rays Library Stats")
				fmt.Fprintf(w, "  Stickers:  %d\n", stats.TotalStickers)
				fmt.Fprintf(w, "  Tags:      %d (%d distinct)\n", stats.TotalTags, stats.DistinctTags)
				fmt.Fprintf(w, "  Shares:    %d\n", stats.TotalShares)
				fmt.Fprintf(w, "  Clicks:    %d\n", stats.TotalClicks)
				fmt.Fprintf(w, "  Data dir:  %s\n", c.cfg.DataDir)
				return nil
			})
		},
	}
}

func newBackupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Write stickers, tags and search domains to a JSON file",
		Long:  "Backup writes library metadata only; sticker image files stay in the data directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFile := "rays-backup.json"
			if len(args) == 1 {
				outFile = args[0]
			}
			return c.withApp(func(a *app) error {
				data, err := a.store.Export()
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(data, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(outFile, out, 0644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d stickers to %s\n", len(data.Stickers), outFile)
				return nil
			})
		},
	}
}

func newRestoreCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Load a JSON backup into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var data store.ExportData
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			return c.withApp(func(a *app) error {
				res, err := a.store.Import(&data)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Restored from %s\n", args[0])
				fmt.Fprintf(w, "  Stickers: %d\n", res.StickersImported)
				fmt.Fprintf(w, "  Tags:     %d\n", res.TagsImported)
				return nil
			})
		},
	}
}
