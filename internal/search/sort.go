package search

import (
	"slices"
	"strings"

	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

// SortBy names a sticker field search results can be ordered by.
type SortBy string

const (
	SortByTitle      SortBy = "title"
	SortByCreateTime SortBy = "create_time"
	SortByModifyTime SortBy = "modify_time"
	SortByShareCount SortBy = "share_count"
	SortByClickCount SortBy = "click_count"
)

var SortFields = []SortBy{SortByTitle, SortByCreateTime, SortByModifyTime, SortByShareCount, SortByClickCount}

// ParseSortBy falls back to create time for unknown names.
func ParseSortBy(s string) SortBy {
	for _, f := range SortFields {
		if string(f) == s {
			return f
		}
	}
	return SortByCreateTime
}

// Sort orders list in place. Titles sort ascending, every numeric field
// descending (newest or most used first); reverse flips the result.
func Sort(list []store.StickerWithTags, by SortBy, reverse bool) {
	slices.SortStableFunc(list, func(a, b store.StickerWithTags) int {
		x, y := a.Sticker, b.Sticker
		switch by {
		case SortByTitle:
			return strings.Compare(x.Title, y.Title)
		case SortByModifyTime:
			return cmpDesc(x.ModifyTime, y.ModifyTime)
		case SortByShareCount:
			return cmpDesc(x.ShareCount, y.ShareCount)
		case SortByClickCount:
			return cmpDesc(x.ClickCount, y.ClickCount)
		default:
			return cmpDesc(x.CreateTime, y.CreateTime)
		}
	})
	if reverse {
		slices.Reverse(list)
	}
}

func cmpDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
