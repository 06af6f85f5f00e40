package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/scraper"
	"wordmap/internal/utils"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// 文档注释：口コミ抓取
// 背景：SCRAPE_MODE=crawl 按 都道府県 → 市区町村 → 店铺 顺序抓取，每个市区町村写一个文本文件，供词云使用；
// SCRAPE_MODE=area 按地域代码或地域名搜索店铺，抓取口コミ详情并写成 CSV。
// 约束：请求串行且每次成功后随机暂停；设置 REDIS_HOST 时页面缓存落到 Redis，否则只用进程内 LRU；
// 单个单元失败只记录并跳过，只有入口页失败才以 1 退出。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := scraper.NewFetcher(nil, utils.EnvInt64("SCRAPE_SEED", time.Now().UnixNano()))
	f.Retries = uint64(max(0, utils.EnvInt("SCRAPE_RETRIES", 2)))
	if rps := utils.EnvFloat("SCRAPE_MAX_RPS", 0); rps > 0 {
		f.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	rc := utils.OpenRedisFromEnv()
	if rc != nil {
		defer rc.Close()
	}
	f.Cache = scraper.NewPageCache(rc,
		utils.EnvInt("SCRAPE_CACHE_SIZE", 512),
		utils.EnvDuration("SCRAPE_CACHE_TTL", 24*time.Hour))
	base := utils.EnvString("SCRAPE_BASE_URL", scraper.DefaultBaseURL)

	switch mode := strings.ToLower(utils.EnvString("SCRAPE_MODE", "crawl")); mode {
	case "crawl":
		f.DelayMin = utils.EnvDuration("SCRAPE_DELAY_MIN", 3*time.Second)
		f.DelayMax = utils.EnvDuration("SCRAPE_DELAY_MAX", 7*time.Second)
		c := &scraper.Crawler{
			F:              f,
			BaseURL:        base,
			OutDir:         utils.EnvString("SCRAPE_OUT_DIR", "tabelog_results"),
			IndexDir:       utils.EnvString("SCRAPE_INDEX_DIR", "tabelog_json"),
			Only:           utils.EnvString("SCRAPE_PREFECTURE", ""),
			MaxPrefectures: utils.EnvInt("SCRAPE_MAX_PREFECTURES", scraper.DefaultMaxPrefectures),
			Log:            logger.Component("scraper"),
		}
		sum, err := c.Run(ctx)
		if err != nil {
			l.Error("crawl_error", "err", err)
			os.Exit(1)
		}
		l.Info("crawl_done", "prefectures", sum.Prefectures, "cities", sum.Cities, "files", sum.Files, "reviews", sum.Reviews)
	case "area":
		area := utils.EnvString("SCRAPE_AREA", "")
		if area == "" {
			l.Error("scrape_area_missing")
			os.Exit(1)
		}
		sort, err := scraper.ParseSort(utils.EnvString("SCRAPE_SORT", "popular"))
		if err != nil {
			l.Error("scrape_sort_invalid", "err", err)
			os.Exit(1)
		}
		f.DelayMin = utils.EnvDuration("SCRAPE_DELAY_MIN", 2*time.Second)
		f.DelayMax = utils.EnvDuration("SCRAPE_DELAY_MAX", 5*time.Second)
		a := scraper.NewAreaScraper(f)
		a.BaseURL = base
		a.CommentsOnly = utils.EnvBool("SCRAPE_COMMENTS_ONLY", false)
		a.MaxSearchPages = utils.EnvInt("SCRAPE_MAX_PAGES", 0)
		reviews, err := a.Run(ctx, area, utils.EnvString("SCRAPE_KEYWORD", ""), sort)
		if err != nil && len(reviews) == 0 {
			l.Error("area_scrape_error", "area", area, "err", err)
			os.Exit(1)
		}
		if err != nil {
			l.Warn("area_scrape_interrupted", "area", area, "reviews", len(reviews), "err", err)
		}
		out := utils.EnvString("SCRAPE_CSV", filepath.Join("results", "tabelog_reviews_"+time.Now().Format("20060102_150405")+".csv"))
		if err := scraper.SaveCSV(out, reviews, a.CommentsOnly); err != nil {
			l.Error("csv_write_error", "path", out, "err", err)
			os.Exit(1)
		}
		l.Info("area_scrape_done", "reviews", len(reviews), "path", out)
	default:
		l.Error("scrape_mode_invalid", "mode", mode)
		os.Exit(1)
	}
	if err := metrics.Flush("review-scrape"); err != nil {
		l.Warn("metrics_flush_error", "err", err)
	}
}
