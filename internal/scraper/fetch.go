// 包 scraper：食べログ口コミ抓取
//
// 所有请求串行发出，每次真实请求后按随机间隔暂停；页面可缓存到本地 LRU 与 Redis。
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"wordmap/internal/logger"
	"wordmap/internal/metrics"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// DefaultUserAgents：请求时随机选用
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
}

var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "ja,en-US;q=0.7,en;q=0.3",
	"Referer":                   "https://tabelog.com/",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// StatusError：非 2xx 响应
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("GET %s: status %d", e.URL, e.Code) }

// Sleeper：可注入的等待函数，测试中替换为记录器
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext：ctx 取消时提前返回
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fetcher：串行、礼貌的页面获取器
type Fetcher struct {
	Client     *http.Client
	UserAgents []string
	// DelayMin/DelayMax：每次真实请求成功后的随机暂停区间 [min,max)
	DelayMin, DelayMax time.Duration
	Sleep              Sleeper
	Cache              PageCache
	// Retries：429/5xx 与网络错误的重试次数
	Retries    uint64
	NewBackOff func() backoff.BackOff
	Limiter    *rate.Limiter
	Log        *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFetcher：client 为空时使用带出站日志的默认客户端
func NewFetcher(client *http.Client, seed int64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second, Transport: logger.NewTransport(nil, logger.Component("scraper"))}
	}
	return &Fetcher{
		Client:     client,
		UserAgents: DefaultUserAgents,
		DelayMin:   3 * time.Second,
		DelayMax:   7 * time.Second,
		Sleep:      SleepContext,
		Retries:    2,
		NewBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		Log:        logger.Component("scraper"),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (f *Fetcher) intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Intn(n)
}

func (f *Fetcher) uniform(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo + time.Duration(f.rng.Int63n(int64(hi-lo)))
}

// Pause：在 [lo,hi) 内随机等待
func (f *Fetcher) Pause(ctx context.Context, lo, hi time.Duration) error {
	return f.Sleep(ctx, f.uniform(lo, hi))
}

// 文档注释：获取页面正文
// 背景：抓取目标会封禁高频访问，因此每次请求随机 UA、带浏览器头，成功后随机暂停；429/5xx 按指数退避重试。
// 约束：缓存命中时既不请求也不暂停；4xx（429 除外）不重试，直接返回 *StatusError。
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	if f.Cache != nil {
		if body, ok := f.Cache.Get(ctx, url); ok {
			return body, nil
		}
	}
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	var body string
	op := func() error {
		b, err := f.do(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}
	var bo backoff.BackOff = &backoff.ZeroBackOff{}
	if f.NewBackOff != nil {
		bo = f.NewBackOff()
	}
	bo = backoff.WithContext(backoff.WithMaxRetries(bo, f.Retries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		metrics.ScrapeFailTotal.Inc()
		f.Log.Warn("fetch_error", "url", url, "err", err)
		return "", err
	}
	if f.Cache != nil {
		f.Cache.Set(ctx, url, body)
	}
	if err := f.Pause(ctx, f.DelayMin, f.DelayMax); err != nil {
		return body, err
	}
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	if len(f.UserAgents) > 0 {
		req.Header.Set("User-Agent", f.UserAgents[f.intn(len(f.UserAgents))])
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	metrics.ScrapeRequestsTotal.Inc()
	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		se := &StatusError{URL: url, Code: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", se
		}
		return "", backoff.Permanent(se)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Document：获取并解析为 goquery 文档
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}
