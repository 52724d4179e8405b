// Package prefs is the key-value preference store for user settings.
//
// Preferences live in a YAML file next to the database. Writes go through
// Update, which persists atomically; Watch picks up edits made by other
// processes (or by hand) and notifies subscribers.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const FileName = "preferences.yaml"

type Preferences struct {
	UseRegexSearch         bool     `yaml:"use_regex_search" json:"use_regex_search"`
	IntersectSearchBySpace bool     `yaml:"intersect_search_by_space" json:"intersect_search_by_space"`
	ExportStickerDir       string   `yaml:"export_sticker_dir" json:"export_sticker_dir"`
	BlurSticker            bool     `yaml:"blur_sticker" json:"blur_sticker"`
	BlurStickerKeywords    []string `yaml:"blur_sticker_keywords" json:"blur_sticker_keywords"`
	SearchResultSort       string   `yaml:"search_result_sort" json:"search_result_sort"`
	SearchResultReverse    bool     `yaml:"search_result_reverse" json:"search_result_reverse"`
}

func Defaults() Preferences {
	return Preferences{
		IntersectSearchBySpace: true,
		BlurStickerKeywords:    []string{},
		SearchResultSort:       "create_time",
	}
}

// ShouldBlur reports whether a sticker with these tags must be hidden.
func (p Preferences) ShouldBlur(tags []string) bool {
	return p.BlurSticker && ContainsInKeywords(tags, p.BlurStickerKeywords)
}

// ContainsInKeywords reports whether any item contains any keyword as a
// substring.
func ContainsInKeywords(items []string, keywords []string) bool {
	for _, k := range keywords {
		for _, item := range items {
			if strings.Contains(item, k) {
				return true
			}
		}
	}
	return false
}

// Store holds the current preferences and the file backing them.
type Store struct {
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	cur  Preferences
	subs []chan Preferences
}

// Open loads dir/preferences.yaml; a missing file means defaults.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("prefs: create dir: %w", err)
	}
	s := &Store{path: filepath.Join(dir, FileName), logger: logger}
	p, err := s.load()
	if err != nil {
		return nil, err
	}
	s.cur = p
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.cur
	p.BlurStickerKeywords = slices.Clone(s.cur.BlurStickerKeywords)
	return p
}

// Update applies fn to a copy of the preferences, writes the file and
// publishes the result.
func (s *Store) Update(fn func(*Preferences)) (Preferences, error) {
	s.mu.Lock()
	next := s.cur
	next.BlurStickerKeywords = slices.Clone(s.cur.BlurStickerKeywords)
	fn(&next)
	normalize(&next)
	if err := s.write(next); err != nil {
		s.mu.Unlock()
		return Preferences{}, err
	}
	s.cur = next
	s.mu.Unlock()

	s.publish(next)
	return next, nil
}

// Subscribe returns a channel receiving every new preferences value. Slow
// readers miss intermediate values, never the latest one.
func (s *Store) Subscribe() <-chan Preferences {
	ch := make(chan Preferences, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Watch reloads the file whenever it changes on disk until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("prefs: watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors replace files instead of writing in place.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("prefs: watch %s: %w", filepath.Dir(s.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if err := s.reload(); err != nil {
				s.logger.Warn("reload preferences", zap.String("path", s.path), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("preferences watcher", zap.Error(err))
		}
	}
}

func (s *Store) reload() error {
	p, err := s.load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	same := equal(s.cur, p)
	s.cur = p
	s.mu.Unlock()
	if !same {
		s.publish(p)
	}
	return nil
}

func (s *Store) publish(p Preferences) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p:
		default:
		}
	}
}

func (s *Store) load() (Preferences, error) {
	p := Defaults()
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("prefs: read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("prefs: parse %s: %w", s.path, err)
	}
	normalize(&p)
	return p, nil
}

func (s *Store) write(p Preferences) error {
	out, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".preferences-*.yaml")
	if err != nil {
		return fmt.Errorf("prefs: temp file: %w", err)
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("prefs: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("prefs: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("prefs: replace %s: %w", s.path, err)
	}
	return nil
}

func normalize(p *Preferences) {
	if p.SearchResultSort == "" {
		p.SearchResultSort = "create_time"
	}
	keywords := make([]string, 0, len(p.BlurStickerKeywords))
	for _, k := range p.BlurStickerKeywords {
		k = strings.TrimSpace(k)
		if k != "" && !slices.Contains(keywords, k) {
			keywords = append(keywords, k)
		}
	}
	p.BlurStickerKeywords = keywords
}

func equal(a, b Preferences) bool {
	return a.UseRegexSearch == b.UseRegexSearch &&
		a.IntersectSearchBySpace == b.IntersectSearchBySpace &&
		a.ExportStickerDir == b.ExportStickerDir &&
		a.BlurSticker == b.BlurSticker &&
		slices.Equal(a.BlurStickerKeywords, b.BlurStickerKeywords) &&
		a.SearchResultSort == b.SearchResultSort &&
		a.SearchResultReverse == b.SearchResultReverse
}
