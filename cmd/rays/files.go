package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/androiddevnotesforks/Rays-Android/internal/importer"
)

type importFlags struct {
	title     string
	tags      []string
	ocr       bool
	overwrite bool
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "title for every file (default: file name)")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "tag to add (repeatable or comma separated)")
	cmd.Flags().BoolVar(&f.ocr, "ocr", false, "add recognized text as tags (needs tesseract)")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "replace title and tags of stickers already in the library")
}

func (f *importFlags) options() importer.Options {
	return importer.Options{Title: f.title, Tags: f.tags, OCR: f.ocr, Overwrite: f.overwrite}
}

func newImportCmd(c *cli) *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "import <file|dir|glob...>",
		Short: "Add images to the library",
		Long: `Import copies images into the library. Directories are walked
recursively and patterns may use ** globs. Files whose content is already in
the library are skipped unless --overwrite is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				res, err := c.importer(a).ImportFiles(cmd.Context(), args, flags.options())
				if err != nil {
					return err
				}
				printImportResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCmd(c *cli) *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Import images as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.withApp(func(a *app) error {
				c.logger.Info("watching for stickers", zap.String("dir", args[0]))
				return c.importer(a).Watch(ctx, args[0], flags.options(), func(res *importer.Result) {
					printImportResult(cmd.OutOrStdout(), res)
				})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func printImportResult(w io.Writer, res *importer.Result) {
	for _, it := range res.Imported {
		verb := "Updated"
		if it.New {
			verb = "Imported"
		}
		fmt.Fprintf(w, "%s %s -> %s (%s)\n", verb, it.Path, it.UUID, it.Title)
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(w, "Skipped %s (already in library)\n", p)
	}
	failed := make([]string, 0, len(res.Failed))
	for p := range res.Failed {
		failed = append(failed, p)
	}
	sort.Strings(failed)
	for _, p := range failed {
		fmt.Fprintf(w, "Failed %s: %s\n", p, res.Failed[p])
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export <uuid...>",
		Short: "Copy sticker files to the export directory",
		Long:  `Export copies sticker files into export_sticker_dir (see "rays prefs"), named by uuid with an extension matching their image type.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				if dir != "" {
					if _, err := a.prefs.Set("export_sticker_dir", dir); err != nil {
						return err
					}
				}
				n, err := a.lib.Export(cmd.Context(), args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d of %d stickers to %s\n", n, len(args), a.lib.Prefs().ExportStickerDir)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "set export_sticker_dir before exporting")
	return cmd
}

func newShareCmd(c *cli) *cobra.Command {
	var appName string
	cmd := &cobra.Command{
		Use:   "share <uuid...>",
		Short: "Share stickers to the connected Android device",
		Long: `Share pushes sticker files over adb and opens them in the chat app in the
foreground (WeChat, QQ or Telegram), falling back to the system share sheet.
Use --app to pick the target explicitly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				res, err := a.lib.Share(cmd.Context(), args, appName)
				if err != nil {
					return err
				}
				target := res.App
				if target == "" {
					target = "share chooser"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shared %d stickers via %s\n", len(res.Remote), target)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&appName, "app", "", "share target: wechat, qq or telegram")
	return cmd
}
