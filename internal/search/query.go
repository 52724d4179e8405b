// Package search builds the SQL that filters stickers by keyword.
//
// The filter is assembled from store.SearchableColumns: every enabled column
// of the sticker table becomes a direct predicate, every other table becomes a
// "uuid IN (subselect)" predicate. Keywords are always bound as parameters.
package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

var ErrInvalidRegex = errors.New("invalid regular expression")

// DomainLookup reports whether a (table, column) pair is enabled for search.
type DomainLookup interface {
	SearchDomainEnabled(table, column string) bool
}

type Options struct {
	// UseRegex matches with REGEXP instead of LIKE '%keyword%'.
	UseRegex bool
	// IntersectBySpace splits the keyword on whitespace and keeps stickers
	// matching every part.
	IntersectBySpace bool
}

type Query struct {
	SQL  string
	Args []any
}

var whitespace = regexp.MustCompile(`\s+`)

// Build returns the sticker query for keyword.
func Build(keyword string, opts Options, domains DomainLookup) (Query, error) {
	return BuildWithColumns(keyword, opts, domains, store.SearchableColumns)
}

// BuildWithColumns is Build over an explicit column table.
func BuildWithColumns(keyword string, opts Options, domains DomainLookup, columns []store.SearchColumn) (Query, error) {
	if !opts.IntersectBySpace {
		where, args, err := filter(keyword, opts, domains, columns)
		if err != nil {
			return Query{}, err
		}
		return Query{SQL: selectPrefix() + where, Args: args}, nil
	}

	var b strings.Builder
	var allArgs []any
	for i, k := range Keywords(keyword) {
		where, args, err := filter(k, opts, domains, columns)
		if err != nil {
			return Query{}, err
		}
		if i > 0 {
			b.WriteString("INTERSECT \n")
		}
		b.WriteString(selectPrefix() + where + " \n")
		allArgs = append(allArgs, args...)
	}
	return Query{SQL: b.String(), Args: allArgs}, nil
}

// Keywords splits on runs of whitespace and drops repeats, keeping the first
// occurrence order. A blank input yields one empty keyword.
func Keywords(keyword string) []string {
	parts := whitespace.Split(strings.TrimSpace(keyword), -1)
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func selectPrefix() string {
	return "SELECT " + store.StickerColumns + " FROM " + store.StickerTable + " WHERE "
}

func filter(k string, opts Options, domains DomainLookup, columns []store.SearchColumn) (string, []any, error) {
	if strings.TrimSpace(k) == "" {
		return "1", nil, nil
	}

	var arg any
	op := "LIKE"
	if opts.UseRegex {
		if _, err := regexp.Compile(k); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidRegex, err)
		}
		op = "REGEXP"
		arg = k
	} else {
		arg = "%" + k + "%"
	}

	var b strings.Builder
	var args []any
	b.WriteString("0")

	for _, table := range tablesOf(columns) {
		if table == store.StickerTable {
			for _, c := range columns {
				if c.Table != table || !domains.SearchDomainEnabled(c.Table, c.Column) {
					continue
				}
				fmt.Fprintf(&b, " OR %s %s ?", c.Column, op)
				args = append(args, arg)
			}
			continue
		}

		var sub strings.Builder
		var subArgs []any
		fmt.Fprintf(&sub, "(SELECT DISTINCT %s FROM %s WHERE 0", store.StickerUUIDColumn, table)
		for _, c := range columns {
			if c.Table != table || !domains.SearchDomainEnabled(c.Table, c.Column) {
				continue
			}
			fmt.Fprintf(&sub, " OR %s %s ?", c.Column, op)
			subArgs = append(subArgs, arg)
		}
		if len(subArgs) == 0 {
			continue
		}
		sub.WriteString(")")
		fmt.Fprintf(&b, " OR %s IN %s", store.UUIDColumn, sub.String())
		args = append(args, subArgs...)
	}

	where := b.String()
	if where == "0" {
		where += " OR 1"
	}
	return where, args, nil
}

// tablesOf returns the distinct tables of columns in first-seen order.
func tablesOf(columns []store.SearchColumn) []string {
	var tables []string
	seen := map[string]bool{}
	for _, c := range columns {
		if !seen[c.Table] {
			seen[c.Table] = true
			tables = append(tables, c.Table)
		}
	}
	return tables
}
