package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the orchestrators, exposed via the /-/metrics
// endpoint.
var (
	ingestedKeywordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_ingested_keywords_total",
		Help: "Keywords processed by ingestion, partitioned by outcome.",
	}, []string{"outcome"}) // created | updated

	prunedInterestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insight_pruned_interests_total",
		Help: "Interests deleted by the pruning job.",
	})

	recommendationCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_recommendation_cache_total",
		Help: "Recommendation cache lookups, partitioned by result.",
	}, []string{"result"}) // hit | miss
)
