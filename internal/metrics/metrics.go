package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// CatalogPages counts search page requests.
	CatalogPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lounge_emotes_catalog_pages_total",
			Help: "Total number of catalog search pages requested.",
		},
		[]string{"category", "status"}, // status: success, http_error, graphql_error
	)

	// CatalogEmotes reports the size of the merged catalog after the last fetch.
	CatalogEmotes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lounge_emotes_catalog_emotes",
			Help: "Number of unique emotes in the catalog.",
		},
	)

	// CatalogFetches counts whole catalog fetch cycles.
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lounge_emotes_catalog_fetches_total",
			Help: "Total number of catalog fetch cycles.",
		},
		[]string{"status"}, // loaded, failed
	)

	// MessagesRewritten counts chat messages passed through the rewriter.
	MessagesRewritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lounge_emotes_messages_rewritten_total",
			Help: "Total number of chat messages processed by the rewriter.",
		},
	)

	// EmotesReplaced counts placeholder images created.
	EmotesReplaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lounge_emotes_emotes_replaced_total",
			Help: "Total number of emote tokens replaced with placeholder images.",
		},
	)

	// LazyImagesResolved counts placeholders whose real source was swapped in.
	LazyImagesResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lounge_emotes_lazy_images_resolved_total",
			Help: "Total number of lazily loaded emote images resolved.",
		},
	)

	// PendingLazyImages reports placeholders still waiting to become visible.
	PendingLazyImages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lounge_emotes_lazy_images_pending",
			Help: "Number of placeholder images still observed by the lazy loader.",
		},
	)
)

// StartServer starts the Prometheus metrics HTTP server.
func StartServer(addr string) {
	if addr == "" {
		log.Info().Msg("Metrics server address not configured, Prometheus endpoint will not be available.")
		return
	}

	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info().Str("address", addr).Msg("Starting Prometheus metrics server")
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Prometheus metrics server failed")
		}
	}()
}
