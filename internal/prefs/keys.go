package prefs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type setter func(p *Preferences, value string) error

func boolSetter(field func(*Preferences) *bool) setter {
	return func(p *Preferences, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", value)
		}
		*field(p) = b
		return nil
	}
}

var setters = map[string]setter{
	"use_regex_search":          boolSetter(func(p *Preferences) *bool { return &p.UseRegexSearch }),
	"intersect_search_by_space": boolSetter(func(p *Preferences) *bool { return &p.IntersectSearchBySpace }),
	"blur_sticker":              boolSetter(func(p *Preferences) *bool { return &p.BlurSticker }),
	"search_result_reverse":     boolSetter(func(p *Preferences) *bool { return &p.SearchResultReverse }),
	"export_sticker_dir": func(p *Preferences, value string) error {
		p.ExportStickerDir = strings.TrimSpace(value)
		return nil
	},
	"search_result_sort": func(p *Preferences, value string) error {
		p.SearchResultSort = strings.TrimSpace(value)
		return nil
	},
	"blur_sticker_keywords": func(p *Preferences, value string) error {
		p.BlurStickerKeywords = strings.Split(value, ",")
		return nil
	},
}

// Keys lists the preference names Set accepts.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a preference from its string form. Keyword lists are comma
// separated.
func (s *Store) Set(key, value string) (Preferences, error) {
	fn, ok := setters[key]
	if !ok {
		return Preferences{}, fmt.Errorf("prefs: unknown key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	// Parse against a scratch copy so a bad value never reaches the file.
	scratch := s.Get()
	if err := fn(&scratch, value); err != nil {
		return Preferences{}, fmt.Errorf("prefs: %s: %w", key, err)
	}
	return s.Update(func(p *Preferences) {
		_ = fn(p, value)
	})
}
