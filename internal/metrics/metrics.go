package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realmmap_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realmmap_rate_limited_total",
		Help: "Requests rejected by the token bucket",
	})
	DatasetFetchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realmmap_dataset_fetch_total",
		Help: "Total dataset fetch attempts",
	})
	DatasetFetchFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realmmap_dataset_fetch_fail_total",
		Help: "Dataset fetch failures by kind (transport, malformed)",
	}, []string{"kind"})
	DatasetFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "realmmap_dataset_fetch_duration_ms",
		Help:    "Dataset fetch duration in milliseconds",
		Buckets: []float64{5, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realmmap_redis_hits_total",
		Help: "Total redis dataset cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realmmap_redis_misses_total",
		Help: "Total redis dataset cache misses",
	})
	LifecycleState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "realmmap_lifecycle_state",
		Help: "1 for the current lifecycle state, 0 otherwise",
	}, []string{"state"})
	LifecycleTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realmmap_lifecycle_transitions_total",
		Help: "Applied lifecycle transitions by target state",
	}, []string{"state"})
	StaleDiscardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realmmap_stale_results_discarded_total",
		Help: "Fetch results dropped because the consumer detached or a newer activation started",
	})
	EnrichedFeatures = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "realmmap_enriched_features",
		Help: "Features in the ready collection by mapping outcome",
	}, []string{"outcome"})
	LocateCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realmmap_locate_cache_hits_total",
		Help: "Point lookup LRU hits",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(DatasetFetchTotal)
	prometheus.MustRegister(DatasetFetchFailTotal)
	prometheus.MustRegister(DatasetFetchDurationMs)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(LifecycleState)
	prometheus.MustRegister(LifecycleTransitionsTotal)
	prometheus.MustRegister(StaleDiscardedTotal)
	prometheus.MustRegister(EnrichedFeatures)
	prometheus.MustRegister(LocateCacheHitsTotal)
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：挂载在 API 前缀下的 /metrics，供 Prometheus 抓取。
func Handler() http.Handler { return promhttp.Handler() }
