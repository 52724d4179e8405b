package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/androiddevnotesforks/Rays-Android/internal/config"
	"github.com/androiddevnotesforks/Rays-Android/internal/importer"
	"github.com/androiddevnotesforks/Rays-Android/internal/library"
	"github.com/androiddevnotesforks/Rays-Android/internal/logging"
	"github.com/androiddevnotesforks/Rays-Android/internal/ocr"
	"github.com/androiddevnotesforks/Rays-Android/internal/prefs"
	"github.com/androiddevnotesforks/Rays-Android/internal/share"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

// cli is the state shared by every command: resolved config and logger.
type cli struct {
	dataDir  string
	logLevel string
	verbose  bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "rays",
		Short: "A searchable sticker library that shares to your phone",
		Long: `Rays keeps your stickers in a local library with titles and tags.
Search them by keyword or regex, then push them straight into the chat app
open on your Android device.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "data directory (default $RAYS_DATA_DIR or ~/.rays)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newImportCmd(c),
		newWatchCmd(c),
		newSearchCmd(c),
		newShowCmd(c),
		newRecentCmd(c),
		newMostSharedCmd(c),
		newTagsCmd(c),
		newTitleCmd(c),
		newTagCmd(c),
		newUntagCmd(c),
		newDeleteCmd(c),
		newExportCmd(c),
		newShareCmd(c),
		newStatsCmd(c),
		newBackupCmd(c),
		newRestoreCmd(c),
		newPrefsCmd(c),
		newDomainsCmd(c),
		newServeCmd(c),
		newMCPCmd(c),
		newTUICmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) setup() error {
	if c.dataDir != "" {
		// Load resolves the config file location from the data dir.
		if err := os.Setenv("RAYS_DATA_DIR", c.dataDir); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

// ─── Library Wiring ──────────────────────────────────────────────────────────

// app is an opened library with everything the commands need.
type app struct {
	store *store.Store
	prefs *prefs.Store
	lib   *library.Library
}

func (c *cli) open() (*app, error) {
	st, err := store.New(store.Config{DataDir: c.cfg.DataDir})
	if err != nil {
		return nil, err
	}
	pr, err := prefs.Open(c.cfg.DataDir, c.logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	lib := library.New(st, pr, c.logger, library.Options{
		ListCount:         c.cfg.Lists.Count,
		PopularCount:      c.cfg.Lists.PopularCount,
		MaxResults:        c.cfg.Search.MaxResults,
		ExportConcurrency: c.cfg.Export.Concurrency,
	})
	device := share.Device{ADB: c.cfg.ADB.Path, Serial: c.cfg.ADB.Serial}
	lib.WithSharer(share.NewSharer(device, c.cfg.ADB.RemoteDir, c.logger))

	return &app{store: st, prefs: pr, lib: lib}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (c *cli) importer(a *app) *importer.Importer {
	rec := ocr.Tesseract{Command: c.cfg.OCR.Command, Languages: c.cfg.OCR.Languages}
	return importer.New(a.store, a.lib.StickerDir(), rec, c.logger)
}

// withApp opens the library for the duration of fn.
func (c *cli) withApp(fn func(a *app) error) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rays",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rays %s\n", version)
		},
	}
}
