// Package store implements the sticker library database for Rays.
//
// It keeps sticker metadata, tags and search-domain switches in SQLite.
// Everything else (search, library, HTTP server, MCP server, CLI, TUI)
// talks to this.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ─── Schema names ────────────────────────────────────────────────────────────

const (
	StickerTable = "stickers"
	TagTable     = "tags"

	UUIDColumn        = "uuid"
	TitleColumn       = "title"
	StickerMD5Column  = "sticker_md5"
	TagColumn         = "tag"
	StickerUUIDColumn = "sticker_uuid"
)

// StickerColumns is the column list every sticker query selects, in the
// order the Sticker struct is scanned.
const StickerColumns = "uuid, title, sticker_md5, click_count, share_count, create_time, modify_time, last_share_time"

// SearchColumn is one (table, column) pair that can take part in keyword search.
type SearchColumn struct {
	Table     string
	Column    string
	DefaultOn bool
}

// SearchableColumns lists every searchable column, grouped by table. Sticker
// table columns come first.
var SearchableColumns = []SearchColumn{
	{Table: StickerTable, Column: TitleColumn, DefaultOn: true},
	{Table: StickerTable, Column: UUIDColumn},
	{Table: StickerTable, Column: StickerMD5Column},
	{Table: TagTable, Column: TagColumn, DefaultOn: true},
}

var ErrStickerNotFound = errors.New("sticker not found")

// ─── Types ───────────────────────────────────────────────────────────────────

type Sticker struct {
	UUID          string `json:"uuid" db:"uuid"`
	Title         string `json:"title" db:"title"`
	StickerMD5    string `json:"sticker_md5" db:"sticker_md5"`
	ClickCount    int64  `json:"click_count" db:"click_count"`
	ShareCount    int64  `json:"share_count" db:"share_count"`
	CreateTime    int64  `json:"create_time" db:"create_time"`
	ModifyTime    int64  `json:"modify_time" db:"modify_time"`
	LastShareTime int64  `json:"last_share_time" db:"last_share_time"`
}

type Tag struct {
	ID          int64  `json:"id" db:"id"`
	StickerUUID string `json:"sticker_uuid" db:"sticker_uuid"`
	Tag         string `json:"tag" db:"tag"`
	CreateTime  int64  `json:"create_time" db:"create_time"`
}

type StickerWithTags struct {
	Sticker Sticker `json:"sticker"`
	Tags    []Tag   `json:"tags"`
}

// TagNames returns the tag strings in insertion order.
func (s StickerWithTags) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.Tag)
	}
	return names
}

type SearchDomain struct {
	Table   string `json:"table" db:"table_name"`
	Column  string `json:"column" db:"column_name"`
	Enabled bool   `json:"enabled" db:"search"`
}

type AddStickerParams struct {
	UUID       string   `json:"uuid,omitempty"`
	Title      string   `json:"title"`
	StickerMD5 string   `json:"sticker_md5"`
	Tags       []string `json:"tags"`
}

// UpdateStickerParams changes only the non-nil fields. A non-nil Tags
// replaces the whole tag set.
type UpdateStickerParams struct {
	Title *string   `json:"title,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

type Stats struct {
	TotalStickers int   `json:"total_stickers"`
	TotalTags     int   `json:"total_tags"`
	DistinctTags  int   `json:"distinct_tags"`
	TotalShares   int64 `json:"total_shares"`
	TotalClicks   int64 `json:"total_clicks"`
}

// ExportData is the full serializable dump of the sticker metadata.
type ExportData struct {
	Version       string            `json:"version"`
	ExportedAt    string            `json:"exported_at"`
	Stickers      []StickerWithTags `json:"stickers"`
	SearchDomains []SearchDomain    `json:"search_domains"`
}

type ImportResult struct {
	StickersImported int `json:"stickers_imported"`
	TagsImported     int `json:"tags_imported"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

type Config struct {
	DataDir string
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".rays")}
}

// ─── Store ───────────────────────────────────────────────────────────────────

type Store struct {
	db  *sqlx.DB
	cfg Config
}

var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("rays: create data dir: %w", err)
	}
	if err := registerRegexp(); err != nil {
		return nil, fmt.Errorf("rays: register regexp: %w", err)
	}

	dsn := "file:" + filepath.Join(cfg.DataDir, "rays.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("rays: open database: %w", err)
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("rays: migration: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an already opened handle. The schema is assumed to exist.
func NewWithDB(db *sql.DB, driverName string) *Store {
	return &Store{db: sqlx.NewDb(db, driverName)}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir is the directory holding the database and sticker files.
func (s *Store) DataDir() string {
	return s.cfg.DataDir
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS stickers (
			uuid            TEXT PRIMARY KEY,
			title           TEXT    NOT NULL DEFAULT '',
			sticker_md5     TEXT    NOT NULL,
			click_count     INTEGER NOT NULL DEFAULT 0,
			share_count     INTEGER NOT NULL DEFAULT 0,
			create_time     INTEGER NOT NULL,
			modify_time     INTEGER NOT NULL DEFAULT 0,
			last_share_time INTEGER NOT NULL DEFAULT 0
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_stickers_md5     ON stickers(sticker_md5);
		CREATE INDEX IF NOT EXISTS idx_stickers_created        ON stickers(create_time DESC);
		CREATE INDEX IF NOT EXISTS idx_stickers_shared         ON stickers(share_count DESC);

		CREATE TABLE IF NOT EXISTS tags (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			sticker_uuid TEXT    NOT NULL,
			tag          TEXT    NOT NULL,
			create_time  INTEGER NOT NULL,
			FOREIGN KEY (sticker_uuid) REFERENCES stickers(uuid) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_sticker_tag ON tags(sticker_uuid, tag);
		CREATE INDEX IF NOT EXISTS idx_tags_tag                ON tags(tag);

		CREATE TABLE IF NOT EXISTS search_domain (
			table_name  TEXT    NOT NULL,
			column_name TEXT    NOT NULL,
			search      INTEGER NOT NULL,
			PRIMARY KEY (table_name, column_name)
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	stickerColumns := []struct {
		name       string
		definition string
	}{
		{name: "modify_time", definition: "INTEGER NOT NULL DEFAULT 0"},
		{name: "last_share_time", definition: "INTEGER NOT NULL DEFAULT 0"},
	}
	for _, c := range stickerColumns {
		if err := s.addColumnIfNotExists(StickerTable, c.name, c.definition); err != nil {
			return err
		}
	}
	return nil
}

// ─── Stickers ────────────────────────────────────────────────────────────────

// AddSticker stores a sticker and its tags. A sticker whose md5 is already
// known keeps its uuid; its title and tags are replaced.
func (s *Store) AddSticker(p AddStickerParams) (string, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("add sticker: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := nowMillis()
	var existing string
	err = tx.Get(&existing, `SELECT uuid FROM stickers WHERE sticker_md5 = ?`, p.StickerMD5)
	switch {
	case err == nil:
		if _, err := tx.Exec(
			`UPDATE stickers SET title = ?, modify_time = ? WHERE uuid = ?`,
			strings.TrimSpace(p.Title), now, existing,
		); err != nil {
			return "", fmt.Errorf("add sticker: update: %w", err)
		}
		if err := replaceTags(tx, existing, p.Tags, now); err != nil {
			return "", err
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("add sticker: commit: %w", err)
		}
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("add sticker: lookup md5: %w", err)
	}

	id := p.UUID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := tx.Exec(
		`INSERT INTO stickers (uuid, title, sticker_md5, create_time, modify_time) VALUES (?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(p.Title), p.StickerMD5, now, now,
	); err != nil {
		return "", fmt.Errorf("add sticker: insert: %w", err)
	}
	if err := replaceTags(tx, id, p.Tags, now); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("add sticker: commit: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateSticker(id string, p UpdateStickerParams) (*StickerWithTags, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("update sticker: begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.Get(&exists, `SELECT COUNT(*) FROM stickers WHERE uuid = ?`, id); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("update sticker %s: %w", id, ErrStickerNotFound)
	}

	now := nowMillis()
	if p.Title != nil {
		if _, err := tx.Exec(`UPDATE stickers SET title = ? WHERE uuid = ?`, strings.TrimSpace(*p.Title), id); err != nil {
			return nil, err
		}
	}
	if p.Tags != nil {
		if err := replaceTags(tx, id, *p.Tags, now); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(`UPDATE stickers SET modify_time = ? WHERE uuid = ?`, now, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update sticker: commit: %w", err)
	}
	return s.GetStickerWithTags(id)
}

// AddTags appends tags to a sticker, skipping ones it already has.
func (s *Store) AddTags(id string, tags []string) error {
	now := nowMillis()
	for _, t := range NormalizeTags(tags) {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO tags (sticker_uuid, tag, create_time) VALUES (?, ?, ?)`,
			id, t, now,
		); err != nil {
			return fmt.Errorf("add tag %q: %w", t, err)
		}
	}
	_, err := s.db.Exec(`UPDATE stickers SET modify_time = ? WHERE uuid = ?`, now, id)
	return err
}

func (s *Store) RemoveTags(id string, tags []string) error {
	for _, t := range NormalizeTags(tags) {
		if _, err := s.db.Exec(`DELETE FROM tags WHERE sticker_uuid = ? AND tag = ?`, id, t); err != nil {
			return fmt.Errorf("remove tag %q: %w", t, err)
		}
	}
	_, err := s.db.Exec(`UPDATE stickers SET modify_time = ? WHERE uuid = ?`, nowMillis(), id)
	return err
}

func (s *Store) GetSticker(id string) (*Sticker, error) {
	var st Sticker
	err := s.db.Get(&st, `SELECT `+StickerColumns+` FROM stickers WHERE uuid = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sticker %s: %w", id, ErrStickerNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) GetStickerWithTags(id string) (*StickerWithTags, error) {
	st, err := s.GetSticker(id)
	if err != nil {
		return nil, err
	}
	list, err := s.attachTags([]Sticker{*st})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// FindByMD5 returns the uuid of the sticker with the given content hash, or
// "" when there is none.
func (s *Store) FindByMD5(md5 string) (string, error) {
	var id string
	err := s.db.Get(&id, `SELECT uuid FROM stickers WHERE sticker_md5 = ?`, md5)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// StickersWithTags runs a sticker query (one that selects StickerColumns)
// and attaches tags, keeping the row order of the query.
func (s *Store) StickersWithTags(query string, args ...any) ([]StickerWithTags, error) {
	var stickers []Sticker
	if err := s.db.Select(&stickers, query, args...); err != nil {
		return nil, err
	}
	return s.attachTags(stickers)
}

func (s *Store) AllStickers(limit int) ([]StickerWithTags, error) {
	if limit <= 0 {
		limit = 1000
	}
	return s.StickersWithTags(
		`SELECT `+StickerColumns+` FROM stickers ORDER BY create_time DESC LIMIT ?`, limit,
	)
}

func (s *Store) RecentCreateStickers(count int) ([]StickerWithTags, error) {
	if count <= 0 {
		count = 10
	}
	return s.StickersWithTags(
		`SELECT `+StickerColumns+` FROM stickers ORDER BY create_time DESC LIMIT ?`, count,
	)
}

func (s *Store) MostSharedStickers(count int) ([]StickerWithTags, error) {
	if count <= 0 {
		count = 10
	}
	return s.StickersWithTags(
		`SELECT `+StickerColumns+` FROM stickers
		 WHERE share_count > 0
		 ORDER BY share_count DESC, last_share_time DESC LIMIT ?`, count,
	)
}

// PopularStickers feeds the popular tag ranking: most shared first, clicks
// break ties.
func (s *Store) PopularStickers(count int) ([]StickerWithTags, error) {
	if count <= 0 {
		count = 50
	}
	return s.StickersWithTags(
		`SELECT `+StickerColumns+` FROM stickers
		 ORDER BY share_count DESC, click_count DESC, create_time DESC LIMIT ?`, count,
	)
}

// DeleteStickerWithTags removes stickers and their tags and returns how many
// sticker rows went away.
func (s *Store) DeleteStickerWithTags(uuids []string) (int, error) {
	if len(uuids) == 0 {
		return 0, nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("delete stickers: begin tx: %w", err)
	}
	defer tx.Rollback()

	q, args, err := sqlx.In(`DELETE FROM tags WHERE sticker_uuid IN (?)`, uuids)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(tx.Rebind(q), args...); err != nil {
		return 0, fmt.Errorf("delete tags: %w", err)
	}

	q, args, err = sqlx.In(`DELETE FROM stickers WHERE uuid IN (?)`, uuids)
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(tx.Rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("delete stickers: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete stickers: commit: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// AddClickCount bumps the click counter and returns the rows affected.
func (s *Store) AddClickCount(id string, count int) (int, error) {
	res, err := s.db.Exec(`UPDATE stickers SET click_count = click_count + ? WHERE uuid = ?`, count, id)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) AddShareCount(id string, count int) (int, error) {
	res, err := s.db.Exec(
		`UPDATE stickers SET share_count = share_count + ?, last_share_time = ? WHERE uuid = ?`,
		count, nowMillis(), id,
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ─── Tags ────────────────────────────────────────────────────────────────────

// RecommendTags returns distinct tags of the stickers used the most.
func (s *Store) RecommendTags(count int) ([]string, error) {
	if count <= 0 {
		count = 10
	}
	var tags []string
	err := s.db.Select(&tags, `
		SELECT t.tag
		FROM tags t
		JOIN stickers s ON s.uuid = t.sticker_uuid
		GROUP BY t.tag
		ORDER BY MAX(s.click_count + s.share_count) DESC, MAX(s.create_time) DESC
		LIMIT ?`, count)
	return tags, err
}

func (s *Store) RandomTags(count int) ([]string, error) {
	if count <= 0 {
		count = 10
	}
	var tags []string
	err := s.db.Select(&tags, `SELECT tag FROM (SELECT DISTINCT tag FROM tags) ORDER BY RANDOM() LIMIT ?`, count)
	return tags, err
}

// ─── Search domains ──────────────────────────────────────────────────────────

// SearchDomainEnabled reports whether a column takes part in keyword search.
// Columns without a stored switch fall back to their default.
func (s *Store) SearchDomainEnabled(table, column string) bool {
	var on bool
	err := s.db.Get(&on, `SELECT search FROM search_domain WHERE table_name = ? AND column_name = ?`, table, column)
	if err == nil {
		return on
	}
	for _, c := range SearchableColumns {
		if c.Table == table && c.Column == column {
			return c.DefaultOn
		}
	}
	return false
}

func (s *Store) SetSearchDomain(table, column string, enabled bool) error {
	if !isSearchable(table, column) {
		return fmt.Errorf("set search domain: %s.%s is not searchable", table, column)
	}
	_, err := s.db.Exec(
		`INSERT INTO search_domain (table_name, column_name, search) VALUES (?, ?, ?)
		 ON CONFLICT(table_name, column_name) DO UPDATE SET search = excluded.search`,
		table, column, enabled,
	)
	return err
}

// SearchDomains returns the effective switch of every searchable column.
func (s *Store) SearchDomains() []SearchDomain {
	domains := make([]SearchDomain, 0, len(SearchableColumns))
	for _, c := range SearchableColumns {
		domains = append(domains, SearchDomain{
			Table:   c.Table,
			Column:  c.Column,
			Enabled: s.SearchDomainEnabled(c.Table, c.Column),
		})
	}
	return domains
}

func isSearchable(table, column string) bool {
	for _, c := range SearchableColumns {
		if c.Table == table && c.Column == column {
			return true
		}
	}
	return false
}

// ─── Stats ───────────────────────────────────────────────────────────────────

func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(share_count), 0), COALESCE(SUM(click_count), 0) FROM stickers`,
	).Scan(&stats.TotalStickers, &stats.TotalShares, &stats.TotalClicks)
	if err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT tag) FROM tags`).Scan(&stats.TotalTags, &stats.DistinctTags); err != nil {
		return nil, err
	}
	return stats, nil
}

// ─── Export / Import ─────────────────────────────────────────────────────────

func (s *Store) Export() (*ExportData, error) {
	stickers, err := s.StickersWithTags(`SELECT ` + StickerColumns + ` FROM stickers ORDER BY create_time`)
	if err != nil {
		return nil, fmt.Errorf("export stickers: %w", err)
	}

	var domains []SearchDomain
	if err := s.db.Select(&domains, `SELECT table_name, column_name, search FROM search_domain ORDER BY table_name, column_name`); err != nil {
		return nil, fmt.Errorf("export search domains: %w", err)
	}

	return &ExportData{
		Version:       "1",
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Stickers:      stickers,
		SearchDomains: domains,
	}, nil
}

func (s *Store) Import(data *ExportData) (*ImportResult, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &ImportResult{}
	for _, sw := range data.Stickers {
		st := sw.Sticker
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO stickers (uuid, title, sticker_md5, click_count, share_count, create_time, modify_time, last_share_time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			st.UUID, st.Title, st.StickerMD5, st.ClickCount, st.ShareCount, st.CreateTime, st.ModifyTime, st.LastShareTime,
		)
		if err != nil {
			return nil, fmt.Errorf("import sticker %s: %w", st.UUID, err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			continue
		}
		result.StickersImported++
		for _, t := range sw.Tags {
			res, err := tx.Exec(
				`INSERT OR IGNORE INTO tags (sticker_uuid, tag, create_time) VALUES (?, ?, ?)`,
				st.UUID, t.Tag, t.CreateTime,
			)
			if err != nil {
				return nil, fmt.Errorf("import tag %q: %w", t.Tag, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				result.TagsImported++
			}
		}
	}

	for _, d := range data.SearchDomains {
		if !isSearchable(d.Table, d.Column) {
			continue
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO search_domain (table_name, column_name, search) VALUES (?, ?, ?)`,
			d.Table, d.Column, d.Enabled,
		); err != nil {
			return nil, fmt.Errorf("import search domain: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("import: commit: %w", err)
	}
	return result, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

const tagBatchSize = 500

func (s *Store) attachTags(stickers []Sticker) ([]StickerWithTags, error) {
	result := make([]StickerWithTags, len(stickers))
	index := make(map[string]int, len(stickers))
	uuids := make([]string, 0, len(stickers))
	for i, st := range stickers {
		result[i] = StickerWithTags{Sticker: st, Tags: []Tag{}}
		index[st.UUID] = i
		uuids = append(uuids, st.UUID)
	}

	for start := 0; start < len(uuids); start += tagBatchSize {
		end := min(start+tagBatchSize, len(uuids))
		q, args, err := sqlx.In(
			`SELECT id, sticker_uuid, tag, create_time FROM tags WHERE sticker_uuid IN (?) ORDER BY id`,
			uuids[start:end],
		)
		if err != nil {
			return nil, err
		}
		var tags []Tag
		if err := s.db.Select(&tags, s.db.Rebind(q), args...); err != nil {
			return nil, fmt.Errorf("load tags: %w", err)
		}
		for _, t := range tags {
			i := index[t.StickerUUID]
			result[i].Tags = append(result[i].Tags, t)
		}
	}
	return result, nil
}

func replaceTags(tx *sqlx.Tx, id string, tags []string, now int64) error {
	if _, err := tx.Exec(`DELETE FROM tags WHERE sticker_uuid = ?`, id); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	for _, t := range NormalizeTags(tags) {
		if _, err := tx.Exec(
			`INSERT INTO tags (sticker_uuid, tag, create_time) VALUES (?, ?, ?)`,
			id, t, now,
		); err != nil {
			return fmt.Errorf("replace tags: insert %q: %w", t, err)
		}
	}
	return nil
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *Store) addColumnIfNotExists(tableName, columnName, definition string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, typ string
		var notNull int
		var defaultValue any
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, columnName, definition))
	return err
}
