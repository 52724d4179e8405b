package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/androiddevnotesforks/Rays-Android/internal/library"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

// ─── Queries ─────────────────────────────────────────────────────────────────

func newSearchCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search [keyword...]",
		Short: "Search stickers by title and tags",
		Long: `Search matches the keyword against every enabled search domain
(see "rays domains"). With use_regex_search on, the keyword is a regular
expression; otherwise, with intersect_search_by_space on, every
space-separated word must match. No keyword lists everything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				list, err := a.lib.Search(strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printStickers(cmd.OutOrStdout(), a.lib, list, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show one sticker with its tags and counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				sw, err := a.lib.Sticker(args[0])
				if err != nil {
					return err
				}
				p, _ := a.lib.StickerFile(args[0])
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "UUID:        %s\n", sw.Sticker.UUID)
				fmt.Fprintf(w, "Title:       %s\n", sw.Sticker.Title)
				fmt.Fprintf(w, "Tags:        %s\n", strings.Join(sw.TagNames(), ", "))
				fmt.Fprintf(w, "MD5:         %s\n", sw.Sticker.StickerMD5)
				fmt.Fprintf(w, "Shared:      %d\n", sw.Sticker.ShareCount)
				fmt.Fprintf(w, "Clicked:     %d\n", sw.Sticker.ClickCount)
				fmt.Fprintf(w, "Created:     %s\n", formatMillis(sw.Sticker.CreateTime))
				fmt.Fprintf(w, "Modified:    %s\n", formatMillis(sw.Sticker.ModifyTime))
				fmt.Fprintf(w, "Last shared: %s\n", formatMillis(sw.Sticker.LastShareTime))
				if p != "" {
					fmt.Fprintf(w, "File:        %s\n", p)
				}
				return nil
			})
		},
	}
}

func newRecentCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently added stickers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				list, err := a.lib.RecentCreateStickers()
				if err != nil {
					return err
				}
				return printStickers(cmd.OutOrStdout(), a.lib, list, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newMostSharedCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "most-shared",
		Short: "List the most shared stickers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				list, err := a.lib.MostSharedStickers()
				if err != nil {
					return err
				}
				return printStickers(cmd.OutOrStdout(), a.lib, list, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newTagsCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:       "tags [popular|recommend|random]",
		Short:     "Suggest tags",
		Long:      "popular ranks tags by how often their stickers are shared; recommend lists recent tags; random picks a few at random.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"popular", "recommend", "random"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "popular"
			if len(args) == 1 {
				kind = args[0]
			}
			return c.withApp(func(a *app) error {
				w := cmd.OutOrStdout()
				if kind == "popular" {
					tags, err := a.lib.PopularTags(limit)
					if err != nil {
						return err
					}
					for i, t := range tags {
						fmt.Fprintf(w, "%2d. %s (%.2f)\n", i+1, t.Tag, t.Score)
					}
					return nil
				}

				var (
					tags []string
					err  error
				)
				if kind == "recommend" {
					tags, err = a.lib.RecommendTags()
				} else {
					tags, err = a.lib.RandomTags()
				}
				if err != nil {
					return err
				}
				for _, t := range tags {
					fmt.Fprintln(w, t)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum popular tags (0 for all)")
	return cmd
}

// ─── Mutations ───────────────────────────────────────────────────────────────

func newTitleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "title <uuid> <title>",
		Short: "Rename a sticker",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return c.withApp(func(a *app) error {
				sw, err := a.lib.UpdateSticker(args[0], store.UpdateStickerParams{Title: &title})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", sw.Sticker.UUID, sw.Sticker.Title)
				return nil
			})
		},
	}
}

func newTagCmd(c *cli) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "tag <uuid> <tag...>",
		Short: "Add tags to a sticker",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, tags := args[0], args[1:]
			return c.withApp(func(a *app) error {
				if replace {
					if _, err := a.lib.UpdateSticker(id, store.UpdateStickerParams{Tags: &tags}); err != nil {
						return err
					}
				} else if err := a.store.AddTags(id, tags); err != nil {
					return err
				}
				return printTags(cmd.OutOrStdout(), a, id)
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace all existing tags")
	return cmd
}

func newUntagCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <uuid> <tag...>",
		Short: "Remove tags from a sticker",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				if err := a.store.RemoveTags(args[0], args[1:]); err != nil {
					return err
				}
				return printTags(cmd.OutOrStdout(), a, args[0])
			})
		},
	}
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <uuid...>",
		Short: "Delete stickers, their tags and their files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				n, err := a.lib.Delete(args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d stickers\n", n, len(args))
				return nil
			})
		},
	}
}

// ─── Output ──────────────────────────────────────────────────────────────────

func printStickers(w io.Writer, lib *library.Library, list []store.StickerWithTags, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if list == nil {
			list = []store.StickerWithTags{}
		}
		return enc.Encode(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "No stickers found")
		return nil
	}
	for _, sw := range list {
		title, tags := sw.Sticker.Title, strings.Join(sw.TagNames(), ", ")
		if lib.ShouldBlur(sw) {
			title, tags = "(hidden)", ""
		}
		fmt.Fprintf(w, "%s  %-30s  shared %-4d %s\n", sw.Sticker.UUID, truncate(title, 30), sw.Sticker.ShareCount, tags)
	}
	return nil
}

func printTags(w io.Writer, a *app, id string) error {
	sw, err := a.store.GetStickerWithTags(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s tags: %s\n", id, strings.Join(sw.TagNames(), ", "))
	return nil
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return time.UnixMilli(ms).Format(time.DateTime)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
