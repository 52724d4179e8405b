// Package recommend ranks tags for the search bar suggestions.
package recommend

import (
	"slices"
	"unicode/utf8"

	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

const (
	// MaxTagLength excludes long tags, which read badly as chips.
	MaxTagLength = 6
	// MaxTagsPerSticker caps how many tags one sticker may contribute.
	MaxTagsPerSticker = 2
)

type TagScore struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"`
}

type tagKey struct {
	tag  string
	uuid string
}

// PopularTags scores the tags of stickers (most popular first). A tag's
// weight on one sticker is the sticker's share count times how often the tag
// appears on it. Each sticker contributes at most two tags, each tag appears
// once, and scores are relative to the best one.
func PopularTags(stickers []store.StickerWithTags) []TagScore {
	values := map[tagKey]int64{}
	counts := map[tagKey]int64{}
	var order []tagKey
	perSticker := map[string]int{}

	for _, s := range stickers {
		for _, t := range s.Tags {
			if utf8.RuneCountInString(t.Tag) >= MaxTagLength {
				continue
			}
			k := tagKey{tag: t.Tag, uuid: s.Sticker.UUID}
			if _, ok := counts[k]; !ok {
				order = append(order, k)
			}
			counts[k]++
			values[k] += s.Sticker.ShareCount
		}
		perSticker[s.Sticker.UUID] = 0
	}
	for k, c := range counts {
		values[k] *= c
	}

	slices.SortStableFunc(order, func(a, b tagKey) int {
		switch va, vb := values[a], values[b]; {
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return 0
	})

	var kept []tagKey
	for _, k := range order {
		n, ok := perSticker[k.uuid]
		if !ok || n >= MaxTagsPerSticker {
			continue
		}
		perSticker[k.uuid] = n + 1
		kept = append(kept, k)
	}

	seen := map[string]bool{}
	result := make([]TagScore, 0, len(kept))
	var top int64
	for _, k := range kept {
		if seen[k.tag] {
			continue
		}
		seen[k.tag] = true
		if len(result) == 0 {
			top = values[k]
		}
		result = append(result, TagScore{Tag: k.tag, Score: float64(values[k])})
	}

	if top == 0 {
		top = 1
	}
	for i := range result {
		result[i].Score /= float64(top)
	}
	return result
}
