package recipesvc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ladle_catalog_load_duration_seconds",
		Help:    "Duration of a full catalog ingestion in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	})
	recipesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladle_recipes_loaded_total",
		Help: "Total number of recipes loaded into the store",
	})
)
