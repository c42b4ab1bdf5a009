// Package catalogtest provides a fake emote search endpoint for tests.
package catalogtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// Server answers every search request with a single page of Names. When
// Fail is set every request gets a 502.
type Server struct {
	*httptest.Server

	Names []string
	Fail  atomic.Bool

	requests atomic.Int64
}

// NewServer starts a fake endpoint that is closed when the test ends.
func NewServer(t testing.TB, names ...string) *Server {
	t.Helper()
	s := &Server{Names: names}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the number of search requests received.
func (s *Server) Requests() int { return int(s.requests.Load()) }

// ImageURL is the URL the fake catalog reports for name.
func ImageURL(name string) string {
	return "https://cdn.7tv.app/emote/" + name + "/1x.webp"
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	_, _ = io.Copy(io.Discard, r.Body)
	if s.Fail.Load() {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	items := make([]map[string]any, 0, len(s.Names))
	for _, n := range s.Names {
		items = append(items, map[string]any{
			"id":          "id-" + n,
			"defaultName": n,
			"images": []map[string]any{
				{"url": ImageURL(n), "mime": "image/webp", "scale": 1},
			},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"emotes": map[string]any{
				"search": map[string]any{
					"items":      items,
					"totalCount": len(items),
					"pageCount":  1,
				},
			},
		},
	})
}
