package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/androiddevnotesforks/Rays-Android/internal/search"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for _, p := range []store.AddStickerParams{
		{Title: "happy cat", StickerMD5: "m1", Tags: []string{"cute", "animal"}},
		{Title: "angry cat", StickerMD5: "m2", Tags: []string{"mad"}},
		{Title: "dog", StickerMD5: "m3", Tags: []string{"cute"}},
	} {
		_, err := s.AddSticker(p)
		require.NoError(t, err)
	}
	return s
}

func run(t *testing.T, s *store.Store, keyword string, opts search.Options) []string {
	t.Helper()
	q, err := search.Build(keyword, opts, s)
	require.NoError(t, err)
	list, err := s.StickersWithTags(q.SQL, q.Args...)
	require.NoError(t, err)
	titles := make([]string, 0, len(list))
	for _, sw := range list {
		titles = append(titles, sw.Sticker.Title)
	}
	return titles
}

func TestSearchAgainstDatabase(t *testing.T) {
	s := seededStore(t)
	intersect := search.Options{IntersectBySpace: true}

	assert.Len(t, run(t, s, "", intersect), 3)
	assert.ElementsMatch(t, []string{"happy cat", "angry cat"}, run(t, s, "cat", intersect))
	assert.ElementsMatch(t, []string{"happy cat", "dog"}, run(t, s, "cute", intersect), "tags are searched")
	assert.ElementsMatch(t, []string{"happy cat"}, run(t, s, "cat  cute", intersect))
	assert.Empty(t, run(t, s, "cat cute", search.Options{}), "whole phrase without splitting")
}

func TestRegexSearchAgainstDatabase(t *testing.T) {
	s := seededStore(t)

	got := run(t, s, "^(happy|dog)", search.Options{UseRegex: true, IntersectBySpace: true})
	assert.ElementsMatch(t, []string{"happy cat", "dog"}, got)
}

func TestDisabledDomainIsNotSearched(t *testing.T) {
	s := seededStore(t)
	require.NoError(t, s.SetSearchDomain(store.TagTable, store.TagColumn, false))

	assert.Empty(t, run(t, s, "cute", search.Options{IntersectBySpace: true}))

	require.NoError(t, s.SetSearchDomain(store.StickerTable, store.TitleColumn, false))
	assert.Len(t, run(t, s, "anything", search.Options{}), 3, "nothing enabled matches everything")
}
