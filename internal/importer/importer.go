// Package importer adds image files to the sticker library.
package importer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/androiddevnotesforks/Rays-Android/internal/metrics"
	"github.com/androiddevnotesforks/Rays-Android/internal/ocr"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

var ErrNotImage = errors.New("not an image")

type Options struct {
	// Title applies to every file; empty means the file name without
	// extension.
	Title string
	Tags  []string
	// OCR adds recognised text lines as tags.
	OCR bool
	// Overwrite replaces title and tags of stickers already in the library.
	// Without it known files are skipped.
	Overwrite bool
}

type Item struct {
	Path  string `json:"path"`
	UUID  string `json:"uuid"`
	Title string `json:"title"`
	New   bool   `json:"new"`
}

type Result struct {
	Imported []Item            `json:"imported"`
	Skipped  []string          `json:"skipped"`
	Failed   map[string]string `json:"failed,omitempty"`
}

type Importer struct {
	store       *store.Store
	stickerDir  string
	recognizer  ocr.Recognizer
	logger      *zap.Logger
	concurrency int
}

func New(st *store.Store, stickerDir string, recognizer ocr.Recognizer, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: st, stickerDir: stickerDir, recognizer: recognizer, logger: logger, concurrency: 4}
}

// candidate is a file that passed the checks and is ready to be stored.
type candidate struct {
	path string
	md5  string
	tags []string
}

// ImportFiles expands patterns (doublestar globs, plain files or directories)
// and imports every image found. A bad file is recorded in Result.Failed and
// does not stop the batch.
func (im *Importer) ImportFiles(ctx context.Context, patterns []string, opts Options) (*Result, error) {
	paths, err := Expand(patterns)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(im.stickerDir, 0755); err != nil {
		return nil, fmt.Errorf("rays: create sticker dir: %w", err)
	}

	// Hashing and OCR run in parallel; store writes stay sequential so two
	// copies of one image in the same batch dedupe cleanly.
	cands := make([]*candidate, len(paths))
	errs := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cands[i], errs[i] = im.inspect(gctx, p, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Imported: []Item{}, Skipped: []string{}, Failed: map[string]string{}}
	for i, c := range cands {
		if errs[i] != nil {
			res.Failed[paths[i]] = errs[i].Error()
			metrics.RecordImport("failed")
			im.logger.Warn("import file", zap.String("path", paths[i]), zap.Error(errs[i]))
			continue
		}
		item, skipped, err := im.add(c, opts)
		switch {
		case err != nil:
			res.Failed[c.path] = err.Error()
			metrics.RecordImport("failed")
			im.logger.Warn("import file", zap.String("path", c.path), zap.Error(err))
		case skipped:
			res.Skipped = append(res.Skipped, c.path)
			metrics.RecordImport("skipped")
		default:
			res.Imported = append(res.Imported, item)
			if item.New {
				metrics.RecordImport("added")
			} else {
				metrics.RecordImport("updated")
			}
			im.logger.Info("imported sticker",
				zap.String("path", c.path),
				zap.String("uuid", item.UUID),
				zap.Bool("new", item.New),
			)
		}
	}
	return res, nil
}

func (im *Importer) inspect(ctx context.Context, path string, opts Options) (*candidate, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}
	sum, err := fileMD5(path)
	if err != nil {
		return nil, err
	}

	tags := append([]string(nil), opts.Tags...)
	if opts.OCR && im.recognizer != nil {
		text, err := im.recognizer.Recognize(ctx, path)
		switch {
		case errors.Is(err, ocr.ErrUnavailable):
			im.logger.Debug("ocr unavailable", zap.Error(err))
		case err != nil:
			im.logger.Warn("ocr", zap.String("path", path), zap.Error(err))
		default:
			tags = append(tags, ocr.Keywords(text)...)
		}
	}
	return &candidate{path: path, md5: sum, tags: tags}, nil
}

func (im *Importer) add(c *candidate, opts Options) (Item, bool, error) {
	existing, err := im.store.FindByMD5(c.md5)
	if err != nil {
		return Item{}, false, err
	}
	if existing != "" && !opts.Overwrite {
		return Item{}, true, nil
	}

	title := opts.Title
	if title == "" {
		title = stem(c.path)
	}
	id, err := im.store.AddSticker(store.AddStickerParams{Title: title, StickerMD5: c.md5, Tags: c.tags})
	if err != nil {
		return Item{}, false, err
	}
	if err := copyFile(c.path, filepath.Join(im.stickerDir, id)); err != nil {
		if existing == "" {
			if _, derr := im.store.DeleteStickerWithTags([]string{id}); derr != nil {
				im.logger.Warn("undo sticker", zap.String("uuid", id), zap.Error(derr))
			}
		}
		return Item{}, false, fmt.Errorf("copy sticker file: %w", err)
	}
	return Item{Path: c.path, UUID: id, Title: title, New: existing == ""}, false, nil
}

// Expand resolves patterns to a sorted-per-pattern, duplicate free list of
// files. Directories import everything below them.
func Expand(patterns []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil {
			if !info.IsDir() {
				add(pattern)
				continue
			}
			pattern = filepath.Join(pattern, "**", "*")
		}
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("rays: bad pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("rays: glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
