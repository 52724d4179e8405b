// Package server exposes the sticker library over a local HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/androiddevnotesforks/Rays-Android/internal/library"
	"github.com/androiddevnotesforks/Rays-Android/internal/metrics"
	"github.com/androiddevnotesforks/Rays-Android/internal/search"
	"github.com/androiddevnotesforks/Rays-Android/internal/share"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

type Server struct {
	lib    *library.Library
	port   int
	logger *zap.Logger
	router chi.Router
}

func New(lib *library.Library, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{lib: lib, port: port, logger: logger}
	s.routes()
	return s
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rays: listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/stickers", func(r chi.Router) {
		r.Get("/", s.handleSearch)
		r.Delete("/", s.handleDelete)
		r.Get("/recent", s.handleRecent)
		r.Get("/most-shared", s.handleMostShared)
		r.Post("/share", s.handleShare)
		r.Get("/{uuid}", s.handleGetSticker)
		r.Patch("/{uuid}", s.handleUpdateSticker)
		r.Get("/{uuid}/image", s.handleImage)
		r.Post("/{uuid}/click", s.handleClick)
	})

	r.Get("/tags/recommend", s.handleRecommendTags)
	r.Get("/tags/random", s.handleRandomTags)
	r.Get("/tags/popular", s.handlePopularTags)

	r.Post("/export", s.handleExport)
	r.Get("/search-domains", s.handleSearchDomains)
	r.Put("/search-domains", s.handleSetSearchDomain)
	r.Get("/stats", s.handleStats)

	s.router = r
}

// ─── Handlers ────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "rays",
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	list, err := s.lib.Search(r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.present(list))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	list, err := s.lib.RecentCreateStickers()
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.present(list))
}

func (s *Server) handleMostShared(w http.ResponseWriter, r *http.Request) {
	list, err := s.lib.MostSharedStickers()
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.present(list))
}

func (s *Server) handleGetSticker(w http.ResponseWriter, r *http.Request) {
	sw, err := s.lib.Sticker(chi.URLParam(r, "uuid"))
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.present([]store.StickerWithTags{*sw})[0])
}

func (s *Server) handleUpdateSticker(w http.ResponseWriter, r *http.Request) {
	var body store.UpdateStickerParams
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	sw, err := s.lib.UpdateSticker(chi.URLParam(r, "uuid"), body)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, sw)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	p, err := s.lib.StickerFile(chi.URLParam(r, "uuid"))
	if err != nil {
		s.fail(w, err)
		return
	}
	http.ServeFile(w, r, p)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	n, err := s.lib.AddClickCount(id, 1)
	if err != nil {
		s.fail(w, err)
		return
	}
	if n == 0 {
		jsonError(w, http.StatusNotFound, store.ErrStickerNotFound.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"uuid": id, "status": "counted"})
}

type uuidsRequest struct {
	UUIDs []string `json:"uuids"`
	App   string   `json:"app,omitempty"`
}

func decodeUUIDs(w http.ResponseWriter, r *http.Request) (uuidsRequest, bool) {
	var body uuidsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return body, false
	}
	if len(body.UUIDs) == 0 {
		jsonError(w, http.StatusBadRequest, "uuids is required")
		return body, false
	}
	return body, true
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeUUIDs(w, r)
	if !ok {
		return
	}
	n, err := s.lib.Delete(body.UUIDs)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeUUIDs(w, r)
	if !ok {
		return
	}
	n, err := s.lib.Export(r.Context(), body.UUIDs)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"exported":  n,
		"requested": len(body.UUIDs),
		"dir":       s.lib.Prefs().ExportStickerDir,
	})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeUUIDs(w, r)
	if !ok {
		return
	}
	res, err := s.lib.Share(r.Context(), body.UUIDs, body.App)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleRecommendTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.lib.RecommendTags()
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(tags))
}

func (s *Server) handleRandomTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.lib.RandomTags()
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(tags))
}

func (s *Server) handlePopularTags(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	tags, err := s.lib.PopularTags(limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, tags)
}

func (s *Server) handleSearchDomains(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.lib.SearchDomains())
}

func (s *Server) handleSetSearchDomain(w http.ResponseWriter, r *http.Request) {
	var body store.SearchDomain
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := s.lib.SetSearchDomain(body.Table, body.Column, body.Enabled); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, s.lib.SearchDomains())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.lib.Store().Stats()
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// stickerView is a sticker as the API shows it: blurred stickers keep their
// uuid but lose title and tags.
type stickerView struct {
	store.StickerWithTags
	Blurred bool `json:"blurred"`
}

func (s *Server) present(list []store.StickerWithTags) []stickerView {
	out := make([]stickerView, 0, len(list))
	for _, sw := range list {
		v := stickerView{StickerWithTags: sw}
		if s.lib.ShouldBlur(sw) {
			v.Blurred = true
			v.Sticker.Title = ""
			v.Tags = []store.Tag{}
		}
		out = append(out, v)
	}
	return out
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrStickerNotFound), errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, search.ErrInvalidRegex),
		errors.Is(err, library.ErrExportDirNotSet):
		status = http.StatusBadRequest
	case errors.Is(err, library.ErrNoSharer),
		errors.Is(err, share.ErrNoDevice),
		errors.Is(err, share.ErrNoTarget):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	jsonError(w, status, err.Error())
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
