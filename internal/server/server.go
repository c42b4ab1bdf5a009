// Package server exposes the emote pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/haytac/lounge-emotes/internal/catalog"
	"github.com/haytac/lounge-emotes/internal/config"
	"github.com/haytac/lounge-emotes/internal/lazyload"
	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/haytac/lounge-emotes/internal/picker"
	"github.com/haytac/lounge-emotes/internal/rewrite"
	"github.com/haytac/lounge-emotes/internal/settings"
	"github.com/haytac/lounge-emotes/internal/watcher"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxBodyBytes limits the markup accepted by the rewrite endpoint.
const MaxBodyBytes = 1 << 20

// Catalog is the part of catalog.Client the API uses.
type Catalog interface {
	Table() *catalog.Table
	State() catalog.State
	Loaded() bool
	FetchCatalog(ctx context.Context) (*catalog.Table, error)
}

// Options wires a Server.
type Options struct {
	Catalog           Catalog
	Settings          *settings.Provider
	Selectors         config.Selectors
	UnicodeShortcodes bool
}

// Server holds the handlers of the HTTP API.
type Server struct {
	opts   Options
	policy *bluemonday.Policy
	log    zerolog.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	return &Server{
		opts:   opts,
		policy: chatPolicy(),
		log:    logging.Component("server"),
	}
}

// chatPolicy keeps the markup of chat messages: structure, ids and classes
// used by the selectors, links and images.
func chatPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div", "span", "time")
	p.AllowAttrs("id", "class").Globally()
	p.AllowAttrs("data-src", "title").OnElements("img")
	p.AllowDataURIImages()
	return p
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/emotes", s.handleListEmotes)
		r.Get("/emotes/search", s.handleSearchEmotes)
		r.Post("/catalog/refresh", s.handleRefresh)
		r.Post("/rewrite", s.handleRewrite)
		r.Get("/settings/emote-size", s.handleGetEmoteSize)
		r.Put("/settings/emote-size", s.handlePutEmoteSize)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	State  string `json:"state"`
	Emotes int    `json:"emotes"`
}

type sizeRequest struct {
	Value string `json:"value"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		State:  s.opts.Catalog.State().String(),
		Emotes: s.opts.Catalog.Table().Len(),
	})
}

func (s *Server) handleListEmotes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.opts.Catalog.Table().Entries())
}

func (s *Server) handleSearchEmotes(w http.ResponseWriter, r *http.Request) {
	table := s.opts.Catalog.Table().Snapshot()
	names := picker.Filter(table, r.URL.Query().Get("q"), picker.MaxResults)
	out := make([]catalog.Entry, 0, len(names))
	for _, n := range names {
		if url, ok := table.Get(n); ok {
			out = append(out, catalog.Entry{Name: n, ImageURL: url})
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	table, err := s.opts.Catalog.FetchCatalog(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Catalog refresh failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{State: s.opts.Catalog.State().String(), Emotes: table.Len()})
}

func (s *Server) handleGetEmoteSize(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sizeRequest{Value: s.opts.Settings.EmoteSize(r.Context())})
}

func (s *Server) handlePutEmoteSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	value := strings.TrimSpace(req.Value)
	if err := s.opts.Settings.SetEmoteSize(r.Context(), value); err != nil {
		if errors.Is(err, settings.ErrInvalidSize) {
			s.writeError(w, http.StatusBadRequest, settings.ErrInvalidSize.Error())
			return
		}
		s.log.Error().Err(err).Msg("Failed to save emote size")
		s.writeError(w, http.StatusInternalServerError, "failed to save emote size")
		return
	}
	s.log.Info().Str("emote_size", value).Msg("Emote size updated")
	s.writeJSON(w, http.StatusOK, sizeRequest{Value: value})
}

// handleRewrite sanitizes a chat HTML fragment and returns it with every
// message rewritten. Placeholders keep their deferred source unless eager=1
// asks for resolved images.
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if !s.opts.Catalog.Loaded() {
		s.writeError(w, http.StatusServiceUnavailable, "emote catalog not loaded")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	out, count, err := s.Rewrite(r.Context(), string(body), r.URL.Query().Get("eager") == "1")
	if err != nil {
		s.log.Error().Err(err).Msg("Rewrite failed")
		s.writeError(w, http.StatusBadRequest, "invalid markup")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Emotes-Replaced", strconv.Itoa(count))
	_, _ = io.WriteString(w, out)
}

// Rewrite sanitizes markup, rewrites every message in it and renders the
// result. It returns the number of placeholders created.
func (s *Server) Rewrite(ctx context.Context, markup string, eager bool) (string, int, error) {
	clean := s.policy.Sanitize(markup)

	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(clean), root)
	if err != nil {
		return "", 0, err
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	// one consistent catalog for the whole request
	table := s.opts.Catalog.Table().Snapshot()
	rw := rewrite.New(table, rewrite.Options{
		Size:              s.opts.Settings.EmoteSize(ctx),
		UnicodeShortcodes: s.opts.UnicodeShortcodes,
	})
	w, err := watcher.New(rw, table, &lazyload.Registry{}, s.opts.Selectors)
	if err != nil {
		return "", 0, err
	}
	created := w.ProcessExisting(root)
	if eager {
		for _, img := range created {
			rewrite.Resolve(img)
		}
	}

	out, err := goquery.NewDocumentFromNode(root).Html()
	if err != nil {
		return "", 0, err
	}
	return out, len(created), nil
}
