// Package mcp implements the Model Context Protocol server for Rays.
//
// It exposes the sticker library over MCP stdio so an agent can find,
// tag and export stickers for the user.
//
// Tool profiles limit what gets registered:
//
//	rays mcp                     → every tool (default)
//	rays mcp --tools=browse      → read-only tools
//	rays mcp --tools=curate      → tools that change the library
//	rays mcp --tools=sticker_search,sticker_get → individual tool names
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/androiddevnotesforks/Rays-Android/internal/library"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

// ─── Tool Profiles ───────────────────────────────────────────────────────────

var ProfileBrowse = map[string]bool{
	"sticker_search":       true,
	"sticker_get":          true,
	"sticker_recent":       true,
	"sticker_most_shared":  true,
	"sticker_popular_tags": true,
	"sticker_stats":        true,
}

var ProfileCurate = map[string]bool{
	"sticker_update": true,
	"sticker_delete": true,
	"sticker_export": true,
}

var Profiles = map[string]map[string]bool{
	"browse": ProfileBrowse,
	"curate": ProfileCurate,
}

// ResolveTools takes a comma-separated string of profile names and/or
// individual tool names and returns the set of tool names to register.
// An empty input means "all".
func ResolveTools(input string) map[string]bool {
	input = strings.TrimSpace(input)
	if input == "" || input == "all" {
		return nil // nil means register everything
	}

	result := make(map[string]bool)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == "all" {
			return nil
		}
		if profile, ok := Profiles[token]; ok {
			for tool := range profile {
				result[tool] = true
			}
		} else {
			result[token] = true
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

const serverInstructions = `Rays is the user's local sticker library. Use these tools to find a ` +
	`sticker (image) by keyword or tag, look at recently added or most shared ` +
	`stickers, fix titles and tags, delete stickers, or export sticker files. ` +
	`Key tools: sticker_search, sticker_get, sticker_update.`

func NewServer(lib *library.Library) *server.MCPServer {
	return NewServerWithTools(lib, nil)
}

// NewServerWithTools registers only the tools in allowlist; nil means all.
func NewServerWithTools(lib *library.Library, allowlist map[string]bool) *server.MCPServer {
	srv := server.NewMCPServer(
		"rays",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	registerTools(srv, lib, allowlist)
	return srv
}

func shouldRegister(name string, allowlist map[string]bool) bool {
	if allowlist == nil {
		return true
	}
	return allowlist[name]
}

func registerTools(srv *server.MCPServer, lib *library.Library, allowlist map[string]bool) {
	// ─── sticker_search (profile: browse) ───────────────────────────────
	if shouldRegister("sticker_search", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_search",
				mcp.WithDescription("Search the sticker library by keyword. Matches titles and tags by default; space separated words must all match unless the user turned that off. When the user enabled regex search the keyword is a regular expression."),
				mcp.WithTitleAnnotation("Search Stickers"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("keyword",
					mcp.Required(),
					mcp.Description("Keyword, words or regular expression; empty lists everything"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Max results (default: 20)"),
				),
			),
			handleSearch(lib),
		)
	}

	// ─── sticker_get (profile: browse) ──────────────────────────────────
	if shouldRegister("sticker_get", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_get",
				mcp.WithDescription("Get one sticker with all its tags, counters and the path of its image file."),
				mcp.WithTitleAnnotation("Get Sticker"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("uuid",
					mcp.Required(),
					mcp.Description("Sticker uuid (from sticker_search)"),
				),
			),
			handleGet(lib),
		)
	}

	// ─── sticker_recent (profile: browse) ───────────────────────────────
	if shouldRegister("sticker_recent", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_recent",
				mcp.WithDescription("List the most recently added stickers."),
				mcp.WithTitleAnnotation("Recent Stickers"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			handleRecent(lib),
		)
	}

	// ─── sticker_most_shared (profile: browse) ──────────────────────────
	if shouldRegister("sticker_most_shared", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_most_shared",
				mcp.WithDescription("List the stickers the user shared the most."),
				mcp.WithTitleAnnotation("Most Shared Stickers"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			handleMostShared(lib),
		)
	}

	// ─── sticker_popular_tags (profile: browse) ─────────────────────────
	if shouldRegister("sticker_popular_tags", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_popular_tags",
				mcp.WithDescription("Rank short tags by how often their stickers get shared. Good search keywords to suggest."),
				mcp.WithTitleAnnotation("Popular Tags"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithNumber("limit",
					mcp.Description("Max tags (default: 10)"),
				),
			),
			handlePopularTags(lib),
		)
	}

	// ─── sticker_stats (profile: browse) ────────────────────────────────
	if shouldRegister("sticker_stats", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_stats",
				mcp.WithDescription("Show library statistics: stickers, tags, shares and clicks."),
				mcp.WithTitleAnnotation("Library Stats"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			handleStats(lib),
		)
	}

	// ─── sticker_update (profile: curate) ───────────────────────────────
	if shouldRegister("sticker_update", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_update",
				mcp.WithDescription("Change a sticker's title and/or tags. Only provided fields change; tags replaces the whole tag list."),
				mcp.WithTitleAnnotation("Update Sticker"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("uuid",
					mcp.Required(),
					mcp.Description("Sticker uuid"),
				),
				mcp.WithString("title",
					mcp.Description("New title"),
				),
				mcp.WithArray("tags",
					mcp.Description("New tag list"),
					mcp.WithStringItems(),
				),
			),
			handleUpdate(lib),
		)
	}

	// ─── sticker_delete (profile: curate) ───────────────────────────────
	if shouldRegister("sticker_delete", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_delete",
				mcp.WithDescription("Permanently delete stickers, their tags and image files. Ask the user first."),
				mcp.WithTitleAnnotation("Delete Stickers"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithArray("uuids",
					mcp.Required(),
					mcp.Description("Sticker uuids to delete"),
					mcp.WithStringItems(),
				),
			),
			handleDelete(lib),
		)
	}

	// ─── sticker_export (profile: curate) ───────────────────────────────
	if shouldRegister("sticker_export", allowlist) {
		srv.AddTool(
			mcp.NewTool("sticker_export",
				mcp.WithDescription("Copy sticker image files into the user's export directory."),
				mcp.WithTitleAnnotation("Export Stickers"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithArray("uuids",
					mcp.Required(),
					mcp.Description("Sticker uuids to export"),
					mcp.WithStringItems(),
				),
			),
			handleExport(lib),
		)
	}
}

// ─── Tool Handlers ───────────────────────────────────────────────────────────

func handleSearch(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, _ := req.GetArguments()["keyword"].(string)
		limit := intArg(req, "limit", 20)

		results, err := lib.Search(keyword)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Search error: %s", err)), nil
		}
		if len(results) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No stickers found for: %q", keyword)), nil
		}
		if limit > 0 && len(results) > limit {
			results = results[:limit]
		}
		return mcp.NewToolResultText(formatList(lib, fmt.Sprintf("Found %d stickers:", len(results)), results)), nil
	}
}

func handleGet(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := req.GetArguments()["uuid"].(string)
		if id == "" {
			return mcp.NewToolResultError("uuid is required"), nil
		}

		sw, err := lib.Sticker(id)
		if errors.Is(err, store.ErrStickerNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Sticker %s not found", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError("Failed to get sticker: " + err.Error()), nil
		}

		var b strings.Builder
		b.WriteString(formatSticker(lib, *sw))
		fmt.Fprintf(&b, "\n    clicks: %d | created: %d | modified: %d", sw.Sticker.ClickCount, sw.Sticker.CreateTime, sw.Sticker.ModifyTime)
		if p, err := lib.StickerFile(id); err == nil {
			fmt.Fprintf(&b, "\n    file: %s", p)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleRecent(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := lib.RecentCreateStickers()
		if err != nil {
			return mcp.NewToolResultError("Failed to list stickers: " + err.Error()), nil
		}
		if len(list) == 0 {
			return mcp.NewToolResultText("The library is empty."), nil
		}
		return mcp.NewToolResultText(formatList(lib, "Recently added:", list)), nil
	}
}

func handleMostShared(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := lib.MostSharedStickers()
		if err != nil {
			return mcp.NewToolResultError("Failed to list stickers: " + err.Error()), nil
		}
		if len(list) == 0 {
			return mcp.NewToolResultText("No sticker has been shared yet."), nil
		}
		return mcp.NewToolResultText(formatList(lib, "Most shared:", list)), nil
	}
}

func handlePopularTags(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := lib.PopularTags(intArg(req, "limit", 10))
		if err != nil {
			return mcp.NewToolResultError("Failed to rank tags: " + err.Error()), nil
		}
		if len(tags) == 0 {
			return mcp.NewToolResultText("No tags yet."), nil
		}
		var b strings.Builder
		b.WriteString("Popular tags:\n")
		for i, t := range tags {
			fmt.Fprintf(&b, "%d. %s (%.2f)\n", i+1, t.Tag, t.Score)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleStats(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := lib.Store().Stats()
		if err != nil {
			return mcp.NewToolResultError("Failed to get stats: " + err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Sticker Library Stats:\n- Stickers: %d\n- Tags: %d (%d distinct)\n- Shares: %d\n- Clicks: %d",
			stats.TotalStickers, stats.TotalTags, stats.DistinctTags, stats.TotalShares, stats.TotalClicks,
		)), nil
	}
}

func handleUpdate(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := req.GetArguments()["uuid"].(string)
		if id == "" {
			return mcp.NewToolResultError("uuid is required"), nil
		}

		update := store.UpdateStickerParams{}
		if v, ok := req.GetArguments()["title"].(string); ok {
			update.Title = &v
		}
		if _, ok := req.GetArguments()["tags"]; ok {
			tags := stringsArg(req, "tags")
			update.Tags = &tags
		}
		if update.Title == nil && update.Tags == nil {
			return mcp.NewToolResultError("provide title or tags to update"), nil
		}

		sw, err := lib.UpdateSticker(id, update)
		if err != nil {
			return mcp.NewToolResultError("Failed to update sticker: " + err.Error()), nil
		}
		return mcp.NewToolResultText("Sticker updated: " + formatSticker(lib, *sw)), nil
	}
}

func handleDelete(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uuids := stringsArg(req, "uuids")
		if len(uuids) == 0 {
			return mcp.NewToolResultError("uuids is required"), nil
		}
		n, err := lib.Delete(uuids)
		if err != nil {
			return mcp.NewToolResultError("Failed to delete stickers: " + err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %d of %d stickers", n, len(uuids))), nil
	}
}

func handleExport(lib *library.Library) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uuids := stringsArg(req, "uuids")
		if len(uuids) == 0 {
			return mcp.NewToolResultError("uuids is required"), nil
		}
		n, err := lib.Export(ctx, uuids)
		if errors.Is(err, library.ErrExportDirNotSet) {
			return mcp.NewToolResultError("No export directory set. Ask the user to run: rays prefs set export_sticker_dir <dir>"), nil
		}
		if err != nil {
			return mcp.NewToolResultError("Export failed: " + err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Exported %d of %d stickers to %s", n, len(uuids), lib.Prefs().ExportStickerDir)), nil
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatList(lib *library.Library, header string, list []store.StickerWithTags) string {
	var b strings.Builder
	b.WriteString(header + "\n\n")
	for i, sw := range list {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, formatSticker(lib, sw))
	}
	return b.String()
}

// formatSticker renders one line per sticker. Blurred stickers only show
// their uuid.
func formatSticker(lib *library.Library, sw store.StickerWithTags) string {
	if lib.ShouldBlur(sw) {
		return fmt.Sprintf("%s (hidden by privacy settings)", sw.Sticker.UUID)
	}
	tags := "none"
	if names := sw.TagNames(); len(names) > 0 {
		tags = strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s — %q\n    tags: %s | shares: %d",
		sw.Sticker.UUID, truncate(sw.Sticker.Title, 80), tags, sw.Sticker.ShareCount)
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// stringsArg reads an array argument; a single string is accepted too.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	switch v := req.GetArguments()[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	}
	return []string{}
}

// truncate cuts s to max runes so CJK titles stay valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
