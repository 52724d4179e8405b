package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle is how long a file must stay quiet before it is imported, so
// half-written copies are not picked up.
var settle = 500 * time.Millisecond

// Watch imports files created in dir until ctx is done. Each batch result is
// passed to onImport when it is not nil.
func (im *Importer) Watch(ctx context.Context, dir string, opts Options, onImport func(*Result)) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("rays: create inbox: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("rays: watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("rays: watch %s: %w", dir, err)
	}
	im.logger.Info("watching inbox", zap.String("dir", dir))

	pending := map[string]time.Time{}
	tick := time.NewTicker(settle / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if base := filepath.Base(ev.Name); strings.HasPrefix(base, ".") {
				continue
			}
			pending[ev.Name] = time.Now()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Warn("inbox watcher", zap.Error(err))

		case now := <-tick.C:
			var ready []string
			for p, last := range pending {
				if now.Sub(last) >= settle {
					ready = append(ready, p)
					delete(pending, p)
				}
			}
			if len(ready) == 0 {
				continue
			}
			res, err := im.ImportFiles(ctx, ready, opts)
			if err != nil {
				im.logger.Warn("inbox import", zap.Error(err))
				continue
			}
			if onImport != nil {
				onImport(res)
			}
		}
	}
}
