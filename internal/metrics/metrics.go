package metrics

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	RegionsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wordmap_regions_processed_total",
		Help: "Regions that completed a pipeline stage",
	}, []string{"stage"})
	RegionsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wordmap_regions_skipped_total",
		Help: "Regions skipped by a pipeline stage, by reason",
	}, []string{"stage", "reason"})
	WordsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wordmap_words_placed_total",
		Help: "Words placed by the word-cloud layouter",
	})
	LayoutDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wordmap_layout_duration_ms",
		Help:    "Word-cloud layout duration per region in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
	})
	ScrapeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wordmap_scrape_requests_total",
		Help: "Total outbound scrape requests",
	})
	ScrapeFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wordmap_scrape_fail_total",
		Help: "Outbound scrape requests that failed or returned non-2xx",
	})
	ScrapeCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wordmap_scrape_cache_hits_total",
		Help: "Scrape page cache hits",
	})
	ScrapeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wordmap_scrape_cache_misses_total",
		Help: "Scrape page cache misses",
	})
	StrategyHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wordmap_scrape_strategy_hits_total",
		Help: "Fallback strategy that produced a result, by chain and strategy",
	}, []string{"chain", "strategy"})
	ReviewsSavedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wordmap_reviews_saved_total",
		Help: "Review texts written to the corpus",
	})
	SubprocessFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wordmap_subprocess_fail_total",
		Help: "External tool invocations that failed",
	}, []string{"tool"})
)

func init() {
	prometheus.MustRegister(RegionsProcessedTotal)
	prometheus.MustRegister(RegionsSkippedTotal)
	prometheus.MustRegister(WordsPlacedTotal)
	prometheus.MustRegister(LayoutDurationMs)
	prometheus.MustRegister(ScrapeRequestsTotal)
	prometheus.MustRegister(ScrapeFailTotal)
	prometheus.MustRegister(ScrapeCacheHitsTotal)
	prometheus.MustRegister(ScrapeCacheMissesTotal)
	prometheus.MustRegister(StrategyHitsTotal)
	prometheus.MustRegister(ReviewsSavedTotal)
	prometheus.MustRegister(SubprocessFailTotal)
}

// 文档注释：批处理结束时导出指标
// 背景：工具不常驻，无法被 Prometheus 抓取；PUSHGATEWAY_URL 存在时推送到 Pushgateway，
// 否则若设置 METRICS_TEXTFILE 则写成 node_exporter textfile 采集格式。两者都未设置时不做任何事。
// 约束：job 取工具名；导出失败只返回错误，由入口记录日志，不影响工具退出码。
func Flush(job string) error {
	if u := os.Getenv("PUSHGATEWAY_URL"); u != "" {
		return push.New(u, job).Gatherer(prometheus.DefaultGatherer).Push()
	}
	if p := os.Getenv("METRICS_TEXTFILE"); p != "" {
		return prometheus.WriteToTextfile(p, prometheus.DefaultGatherer)
	}
	return nil
}
