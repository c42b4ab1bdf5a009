package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/haytac/lounge-emotes/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint = "https://7tv.io/v4/gql"
	DefaultMaxPages = 2
	DefaultPerPage  = 150
)

// ErrEmptyCatalog is returned when no category produced a single entry.
var ErrEmptyCatalog = errors.New("catalog: no emotes loaded from any category")

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	Endpoint          string
	Categories        []SortBy
	MaxPages          int // per category, page 1 included
	PerPage           int
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Client queries the search API and owns the table it fills.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
	table      *Table
	fetchMu    sync.Mutex // one FetchCatalog at a time
	state      atomic.Int32
	log        zerolog.Logger
}

// NewClient creates a Client using httpClient for every request.
func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if len(opts.Categories) == 0 {
		opts.Categories = DefaultCategories
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		httpClient: httpClient,
		opts:       opts,
		limiter:    rate.NewLimiter(limit, opts.Burst),
		table:      NewTable(),
		log:        logging.Component("catalog"),
	}
}

// Table returns the table filled by FetchCatalog.
func (c *Client) Table() *Table { return c.table }

// State reports the lifecycle of the latest fetch.
func (c *Client) State() State { return State(c.state.Load()) }

// Loaded reports whether the last fetch produced a usable table.
func (c *Client) Loaded() bool { return c.State() == StateLoaded && c.table.Len() > 0 }

// Invalidate marks the table stale so the next initialization fetches again.
func (c *Client) Invalidate() {
	c.state.CompareAndSwap(int32(StateLoaded), int32(StateIdle))
}

// FetchPage requests one page of one category.
func (c *Client) FetchPage(ctx context.Context, sortBy SortBy, page int) (*SearchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for %s page %d: %w", sortBy, page, err)
	}

	body, err := json.Marshal(newSearchRequest(sortBy, page, c.opts.PerPage))
	if err != nil {
		return nil, fmt.Errorf("encoding %s page %d request: %w", sortBy, page, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s page %d request: %w", sortBy, page, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CatalogPages.WithLabelValues(string(sortBy), "http_error").Inc()
		return nil, fmt.Errorf("fetching %s page %d: %w", sortBy, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		metrics.CatalogPages.WithLabelValues(string(sortBy), "http_error").Inc()
		return nil, fmt.Errorf("fetching %s page %d: %w", sortBy, page, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(snippet)})
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.CatalogPages.WithLabelValues(string(sortBy), "decode_error").Inc()
		return nil, fmt.Errorf("decoding %s page %d: %w", sortBy, page, err)
	}
	if len(decoded.Errors) > 0 {
		metrics.CatalogPages.WithLabelValues(string(sortBy), "graphql_error").Inc()
		return nil, &GraphQLError{SortBy: sortBy, Page: page, Errors: decoded.Errors}
	}

	metrics.CatalogPages.WithLabelValues(string(sortBy), "success").Inc()
	if decoded.Data.Emotes.Search == nil {
		return &SearchResult{}, nil
	}
	return decoded.Data.Emotes.Search, nil
}

// FetchCategory loads page 1 of a category, then the remaining pages up to
// MaxPages concurrently. Failed pages are logged and contribute nothing.
func (c *Client) FetchCategory(ctx context.Context, sortBy SortBy, table *Table) int {
	l := c.log.With().Str("category", string(sortBy)).Logger()
	l.Debug().Int("max_pages", c.opts.MaxPages).Msg("Fetching category")

	first, err := c.FetchPage(ctx, sortBy, 1)
	if err != nil {
		l.Error().Err(err).Int("page", 1).Msg("Failed to fetch first page, skipping category")
		return 0
	}
	var added atomic.Int64
	added.Add(int64(table.AddItems(first.Items)))

	totalPages := first.PageCount
	if totalPages <= 0 {
		totalPages = 1
	}
	pages := min(totalPages, c.opts.MaxPages)
	l.Debug().Int64("added", added.Load()).Int("total_pages", totalPages).Msg("Fetched first page")

	var g errgroup.Group
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			result, err := c.FetchPage(ctx, sortBy, page)
			if err != nil {
				l.Error().Err(err).Int("page", page).Msg("Failed to fetch page")
				return nil
			}
			added.Add(int64(table.AddItems(result.Items)))
			return nil
		})
	}
	_ = g.Wait()

	l.Info().Int64("added", added.Load()).Msg("Finished fetching category")
	return int(added.Load())
}

// FetchCatalog rebuilds the table from every configured category. Pages are
// collected into a staging table and published in one step once every
// category has settled, so readers never see a partial catalog. It fails only
// when nothing was collected. A failed refresh of a loaded catalog keeps the
// previous entries.
func (c *Client) FetchCatalog(ctx context.Context) (*Table, error) {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	refreshing := c.Loaded()
	if !refreshing {
		c.state.Store(int32(StateLoading))
	}
	c.log.Info().Int("categories", len(c.opts.Categories)).Bool("refresh", refreshing).Msg("Fetching emote catalog")

	staging := NewTable()
	var g errgroup.Group
	for _, category := range c.opts.Categories {
		g.Go(func() error {
			c.FetchCategory(ctx, category, staging)
			return nil
		})
	}
	_ = g.Wait()

	size := staging.Len()
	if size == 0 {
		metrics.CatalogFetches.WithLabelValues("failed").Inc()
		if refreshing {
			c.log.Error().Int("emotes", c.table.Len()).Msg("Catalog refresh loaded nothing, keeping previous emotes")
			return nil, ErrEmptyCatalog
		}
		c.table.Reset()
		metrics.CatalogEmotes.Set(0)
		c.state.Store(int32(StateFailed))
		c.log.Error().Msg("Failed to load any emotes from any category")
		return nil, ErrEmptyCatalog
	}

	c.table.Replace(staging)
	metrics.CatalogEmotes.Set(float64(size))
	c.state.Store(int32(StateLoaded))
	metrics.CatalogFetches.WithLabelValues("loaded").Inc()
	c.log.Info().Int("emotes", size).Msg("Emote catalog loaded")
	return c.table, nil
}

// ParseCategories converts configured names into SortBy values.
func ParseCategories(names []string) []SortBy {
	out := make([]SortBy, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, SortBy(n))
		}
	}
	return out
}
