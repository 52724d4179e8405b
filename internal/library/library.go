// Package library is the repository layer every front end uses.
//
// It combines the store with the user preferences: searches follow the
// regex and intersect switches, results follow the chosen sort order, and
// export goes to the configured directory. Sticker image files live under
// <data dir>/stickers/<uuid>.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/androiddevnotesforks/Rays-Android/internal/metrics"
	"github.com/androiddevnotesforks/Rays-Android/internal/prefs"
	"github.com/androiddevnotesforks/Rays-Android/internal/recommend"
	"github.com/androiddevnotesforks/Rays-Android/internal/search"
	"github.com/androiddevnotesforks/Rays-Android/internal/share"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

var (
	ErrExportDirNotSet = errors.New("export directory not set")
	ErrNoSharer        = errors.New("sharing is not configured")
)

// Options sizes lists and batches. Zero values take the defaults.
type Options struct {
	ListCount         int
	PopularCount      int
	MaxResults        int
	ExportConcurrency int
}

func (o Options) withDefaults() Options {
	if o.ListCount <= 0 {
		o.ListCount = 10
	}
	if o.PopularCount <= 0 {
		o.PopularCount = 50
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 200
	}
	if o.ExportConcurrency <= 0 {
		o.ExportConcurrency = 4
	}
	return o
}

type Library struct {
	store  *store.Store
	prefs  *prefs.Store
	sharer *share.Sharer
	logger *zap.Logger
	opts   Options
}

func New(st *store.Store, pr *prefs.Store, logger *zap.Logger, opts Options) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{store: st, prefs: pr, logger: logger, opts: opts.withDefaults()}
}

// WithSharer enables Share.
func (l *Library) WithSharer(s *share.Sharer) *Library {
	l.sharer = s
	return l
}

func (l *Library) Store() *store.Store { return l.store }

func (l *Library) Prefs() prefs.Preferences { return l.prefs.Get() }

func (l *Library) PrefsStore() *prefs.Store { return l.prefs }

// StickerDir holds the image file of every sticker.
func (l *Library) StickerDir() string {
	return filepath.Join(l.store.DataDir(), "stickers")
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// Search filters stickers by keyword using the current search preferences and
// orders them by the preferred sort field.
func (l *Library) Search(keyword string) ([]store.StickerWithTags, error) {
	p := l.prefs.Get()
	opts := search.Options{UseRegex: p.UseRegexSearch, IntersectBySpace: p.IntersectSearchBySpace}

	start := time.Now()
	q, err := search.Build(keyword, opts, l.store)
	if err != nil {
		l.logger.Warn("search", zap.String("keyword", keyword), zap.Error(err))
		return nil, err
	}
	list, err := l.store.StickersWithTags(q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("rays: search %q: %w", keyword, err)
	}
	mode := "like"
	if opts.UseRegex {
		mode = "regex"
	}
	metrics.ObserveSearch(mode, time.Since(start))

	search.Sort(list, search.ParseSortBy(p.SearchResultSort), p.SearchResultReverse)
	if len(list) > l.opts.MaxResults {
		list = list[:l.opts.MaxResults]
	}
	l.logger.Debug("search",
		zap.String("keyword", keyword),
		zap.String("mode", mode),
		zap.Int("results", len(list)),
	)
	return list, nil
}

func (l *Library) Sticker(uuid string) (*store.StickerWithTags, error) {
	return l.store.GetStickerWithTags(uuid)
}

// StickerFile returns the path of a sticker's image file.
func (l *Library) StickerFile(uuid string) (string, error) {
	if _, err := l.store.GetSticker(uuid); err != nil {
		return "", err
	}
	p := filepath.Join(l.StickerDir(), uuid)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("rays: sticker file %s: %w", uuid, err)
	}
	return p, nil
}

func (l *Library) RecentCreateStickers() ([]store.StickerWithTags, error) {
	return l.store.RecentCreateStickers(l.opts.ListCount)
}

func (l *Library) MostSharedStickers() ([]store.StickerWithTags, error) {
	return l.store.MostSharedStickers(l.opts.ListCount)
}

func (l *Library) RecommendTags() ([]string, error) {
	return l.store.RecommendTags(l.opts.ListCount)
}

func (l *Library) RandomTags() ([]string, error) {
	return l.store.RandomTags(l.opts.ListCount)
}

// PopularTags ranks the tags of the most used stickers and keeps the first
// count (all when count <= 0).
func (l *Library) PopularTags(count int) ([]recommend.TagScore, error) {
	stickers, err := l.store.PopularStickers(l.opts.PopularCount)
	if err != nil {
		return nil, fmt.Errorf("rays: popular stickers: %w", err)
	}
	tags := recommend.PopularTags(stickers)
	if count > 0 && len(tags) > count {
		tags = tags[:count]
	}
	return tags, nil
}

// ShouldBlur reports whether the privacy preferences hide this sticker.
func (l *Library) ShouldBlur(s store.StickerWithTags) bool {
	return l.prefs.Get().ShouldBlur(s.TagNames())
}

// ─── Mutations ───────────────────────────────────────────────────────────────

func (l *Library) UpdateSticker(uuid string, p store.UpdateStickerParams) (*store.StickerWithTags, error) {
	return l.store.UpdateSticker(uuid, p)
}

func (l *Library) AddClickCount(uuid string, count int) (int, error) {
	return l.store.AddClickCount(uuid, count)
}

// Delete removes stickers, their tags and their files. A file that cannot be
// removed is logged; the rows are gone either way.
func (l *Library) Delete(uuids []string) (int, error) {
	n, err := l.store.DeleteStickerWithTags(uuids)
	if err != nil {
		return 0, fmt.Errorf("rays: delete stickers: %w", err)
	}
	for _, id := range uuids {
		p := filepath.Join(l.StickerDir(), id)
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("remove sticker file", zap.String("uuid", id), zap.Error(err))
		}
	}
	l.logger.Info("deleted stickers", zap.Int("requested", len(uuids)), zap.Int("deleted", n))
	return n, nil
}

func (l *Library) SearchDomains() []store.SearchDomain {
	return l.store.SearchDomains()
}

func (l *Library) SetSearchDomain(table, column string, enabled bool) error {
	return l.store.SetSearchDomain(table, column, enabled)
}

// ─── Export ──────────────────────────────────────────────────────────────────

// Export copies sticker files into the preferred export directory as
// <uuid><ext>. Stickers that fail are logged and skipped; the number copied
// is returned.
func (l *Library) Export(ctx context.Context, uuids []string) (int, error) {
	dir := l.prefs.Get().ExportStickerDir
	if dir == "" {
		return 0, ErrExportDirNotSet
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("rays: create export dir: %w", err)
	}

	var copied atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.ExportConcurrency)
	for _, id := range uuids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dst, err := l.exportOne(id, dir)
			metrics.RecordExport(err == nil)
			if err != nil {
				l.logger.Error("export sticker", zap.String("uuid", id), zap.Error(err))
				return nil
			}
			copied.Add(1)
			l.logger.Debug("exported sticker", zap.String("uuid", id), zap.String("path", dst))
			return nil
		})
	}
	err := g.Wait()
	return int(copied.Load()), err
}

func (l *Library) exportOne(id, dir string) (string, error) {
	src := filepath.Join(l.StickerDir(), id)
	mt, err := mimetype.DetectFile(src)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, id+mt.Extension())
	return dst, copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ─── Share ───────────────────────────────────────────────────────────────────

// Share sends stickers to the foreground chat app, or to app when it names a
// built-in target, and counts the share on success.
func (l *Library) Share(ctx context.Context, uuids []string, app string) (*share.Result, error) {
	if l.sharer == nil {
		return nil, ErrNoSharer
	}
	files := make([]share.File, 0, len(uuids))
	for _, id := range uuids {
		p, err := l.StickerFile(id)
		if err != nil {
			return nil, err
		}
		files = append(files, share.File{Path: p, Name: id})
	}

	var (
		res *share.Result
		err error
	)
	if app != "" {
		target, ok := share.AppByName(app)
		if !ok {
			return nil, fmt.Errorf("rays: unknown share target %q", app)
		}
		res, err = l.sharer.ShareTo(ctx, target, files)
	} else {
		res, err = l.sharer.Share(ctx, files)
	}
	if err != nil {
		metrics.RecordShare(app, false)
		return nil, err
	}
	metrics.RecordShare(res.App, true)

	for _, id := range uuids {
		if _, err := l.store.AddShareCount(id, 1); err != nil {
			l.logger.Warn("count share", zap.String("uuid", id), zap.Error(err))
		}
	}
	return res, nil
}
