package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/androiddevnotesforks/Rays-Android/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type domainSet map[string]bool

func (d domainSet) SearchDomainEnabled(table, column string) bool {
	return d[table+"."+column]
}

const prefix = "SELECT " + store.StickerColumns + " FROM stickers WHERE "

func TestBuildBlankKeywordMatchesEverything(t *testing.T) {
	q, err := Build("   ", Options{}, domainSet{"stickers.title": true})
	require.NoError(t, err)
	assert.Equal(t, prefix+"1", q.SQL)
	assert.Empty(t, q.Args)
}

func TestBuildOrsEnabledColumnsOnly(t *testing.T) {
	domains := domainSet{"stickers.title": true, "stickers.sticker_md5": true, "tags.tag": true}

	q, err := Build("cat", Options{}, domains)
	require.NoError(t, err)

	assert.Equal(t,
		prefix+"0 OR title LIKE ? OR sticker_md5 LIKE ? OR uuid IN (SELECT DISTINCT sticker_uuid FROM tags WHERE 0 OR tag LIKE ?)",
		q.SQL,
	)
	assert.Equal(t, []any{"%cat%", "%cat%", "%cat%"}, q.Args)
	assert.NotContains(t, q.SQL, "uuid LIKE")
}

func TestBuildSkipsTableWithNoEnabledColumns(t *testing.T) {
	q, err := Build("cat", Options{}, domainSet{"stickers.title": true})
	require.NoError(t, err)
	assert.Equal(t, prefix+"0 OR title LIKE ?", q.SQL)
	assert.NotContains(t, q.SQL, "tags")
}

func TestBuildNothingEnabledFallsBackToAll(t *testing.T) {
	q, err := Build("cat", Options{}, domainSet{})
	require.NoError(t, err)
	assert.Equal(t, prefix+"0 OR 1", q.SQL)
	assert.Empty(t, q.Args)
}

func TestBuildRegexUsesRawPattern(t *testing.T) {
	q, err := Build("^ca+t$", Options{UseRegex: true}, domainSet{"stickers.title": true, "tags.tag": true})
	require.NoError(t, err)
	assert.Equal(t,
		prefix+"0 OR title REGEXP ? OR uuid IN (SELECT DISTINCT sticker_uuid FROM tags WHERE 0 OR tag REGEXP ?)",
		q.SQL,
	)
	assert.Equal(t, []any{"^ca+t$", "^ca+t$"}, q.Args)
}

func TestBuildRejectsInvalidRegex(t *testing.T) {
	_, err := Build("([", Options{UseRegex: true}, domainSet{"stickers.title": true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRegex))
}

func TestBuildWithoutIntersectKeepsWholeKeyword(t *testing.T) {
	q, err := Build("happy cat", Options{}, domainSet{"stickers.title": true})
	require.NoError(t, err)
	assert.NotContains(t, q.SQL, "INTERSECT")
	assert.Equal(t, []any{"%happy cat%"}, q.Args)
}

func TestBuildIntersectSplitsOnWhitespace(t *testing.T) {
	q, err := Build("  happy \t cat\nhappy ", Options{IntersectBySpace: true}, domainSet{"stickers.title": true})
	require.NoError(t, err)

	parts := strings.Split(strings.TrimSpace(q.SQL), "INTERSECT")
	require.Len(t, parts, 2)
	assert.Equal(t, prefix+"0 OR title LIKE ?", strings.TrimSpace(parts[0]))
	assert.Equal(t, prefix+"0 OR title LIKE ?", strings.TrimSpace(parts[1]))
	assert.Equal(t, []any{"%happy%", "%cat%"}, q.Args)
}

func TestBuildIntersectSingleKeywordHasNoIntersect(t *testing.T) {
	q, err := Build("cat", Options{IntersectBySpace: true}, domainSet{"stickers.title": true})
	require.NoError(t, err)
	assert.NotContains(t, q.SQL, "INTERSECT")
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a b  c", []string{"a", "b", "c"}},
		{" b a b ", []string{"b", "a"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Keywords(tt.in), "input %q", tt.in)
	}
}

func TestSortOrders(t *testing.T) {
	list := []store.StickerWithTags{
		{Sticker: store.Sticker{UUID: "a", Title: "b", ShareCount: 1, CreateTime: 10}},
		{Sticker: store.Sticker{UUID: "b", Title: "a", ShareCount: 5, CreateTime: 30}},
		{Sticker: store.Sticker{UUID: "c", Title: "c", ShareCount: 3, CreateTime: 20}},
	}

	Sort(list, SortByTitle, false)
	assert.Equal(t, []string{"b", "a", "c"}, uuids(list))

	Sort(list, SortByShareCount, false)
	assert.Equal(t, []string{"b", "c", "a"}, uuids(list))

	Sort(list, SortByCreateTime, true)
	assert.Equal(t, []string{"a", "c", "b"}, uuids(list))
}

func TestParseSortByDefaults(t *testing.T) {
	assert.Equal(t, SortByClickCount, ParseSortBy("click_count"))
	assert.Equal(t, SortByCreateTime, ParseSortBy("nonsense"))
}

func uuids(list []store.StickerWithTags) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Sticker.UUID
	}
	return out
}
