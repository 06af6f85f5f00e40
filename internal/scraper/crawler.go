package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/utils"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultBaseURL        = "https://tabelog.com"
	DefaultMaxPrefectures = 30
)

// ErrUnknownPrefecture：指定的都道府県键不在全国列表中
var ErrUnknownPrefecture = errors.New("scraper: prefecture not found in nationwide list")

// Link：页面上的一个命名链接
type Link struct {
	Key  string
	Name string
	URL  string
}

// Links：按出现顺序编码为 JSON 对象（名称 → URL）
type Links []Link

func (ls Links) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, l.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, l.URL); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// ExtractPrefectures：全国列表页中的都道府県链接，键为 URL 的第一段路径
// 约束：同键后出现的覆盖先出现的；结果按键排序。
func ExtractPrefectures(doc *goquery.Document, base string) []Link {
	byKey := map[string]Link{}
	doc.Find(".list-balloon__table--pref a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs := resolve(base, href)
		u, err := url.Parse(abs)
		if err != nil {
			return
		}
		seg := strings.Split(strings.Trim(u.Path, "/"), "/")[0]
		if seg == "" || !strings.HasSuffix(u.Path, "/") {
			return
		}
		byKey[seg] = Link{Key: seg, Name: strings.TrimSpace(a.Text()), URL: abs}
	})
	out := make([]Link, 0, len(byKey))
	for _, l := range byKey {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ExtractCities：都道府県页左侧导航中的市区町村链接
// 约束：同名后出现的 URL 覆盖先出现的，位置保持首次出现处。
func ExtractCities(doc *goquery.Document, base string) Links {
	var out Links
	pos := map[string]int{}
	doc.Find("div#tabs-panel-balloon-pref-city li.list-balloon__list-item").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		span := a.Find("span").First()
		if span.Length() == 0 {
			return
		}
		name := strings.TrimSpace(span.Text())
		l := Link{Name: name, URL: resolve(base, href)}
		if i, dup := pos[name]; dup {
			out[i] = l
			return
		}
		pos[name] = len(out)
		out = append(out, l)
	})
	return out
}

// ExtractRestaurants：列表页中的店铺 URL
func ExtractRestaurants(doc *goquery.Document, base string) []string {
	var out []string
	doc.Find("a.list-rst__rst-name-target").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			out = append(out, resolve(base, href))
		}
	})
	return out
}

func resolve(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	r, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(r).String()
}

func commentText(s *goquery.Selection) string {
	var parts []string
	s.Find("div.rvw-item__rvw-comment").First().Find("p").Each(func(_ int, p *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(p.Text()))
	})
	return strings.Join(parts, "\n")
}

// Crawler：全国 → 都道府県 → 市区町村 → 店铺 → 口コミ 的语料抓取
type Crawler struct {
	F       *Fetcher
	BaseURL string
	// OutDir：<OutDir>/<prefKey>/<city>.txt
	OutDir string
	// IndexDir：<IndexDir>/<prefKey>.json（市区町村 → URL）
	IndexDir       string
	Only           string
	MaxPrefectures int
	Log            *slog.Logger
}

// Summary：一次抓取的计数
type Summary struct {
	Prefectures int
	Cities      int
	Files       int
	Reviews     int
}

// 文档注释：执行整个抓取流程
// 背景：抓取耗时以小时计，任何单元（都道府県、市区町村、店铺、口コミ）失败都只记录并跳过。
// 约束：全国列表取不到或没有都道府県时返回错误；Only 指定的键不存在时返回 ErrUnknownPrefecture；
// 最多处理 MaxPrefectures 个（按键排序）；市区町村没有任何口コミ时不写文件。
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if c.Log == nil {
		c.Log = logger.Component("scraper")
	}
	base := c.base()
	doc, err := c.F.Document(ctx, base+"/rstLst/")
	if err != nil {
		return sum, fmt.Errorf("nationwide list: %w", err)
	}
	prefs := ExtractPrefectures(doc, base)
	if len(prefs) == 0 {
		return sum, errors.New("nationwide list: no prefectures")
	}
	c.Log.Info("prefectures_found", "count", len(prefs))
	if c.Only != "" {
		var sel []Link
		for _, p := range prefs {
			if p.Key == c.Only {
				sel = append(sel, p)
			}
		}
		if len(sel) == 0 {
			return sum, fmt.Errorf("%q: %w", c.Only, ErrUnknownPrefecture)
		}
		prefs = sel
	}
	limit := c.MaxPrefectures
	if limit <= 0 {
		limit = DefaultMaxPrefectures
	}
	if len(prefs) > limit {
		prefs = prefs[:limit]
	}
	for _, p := range prefs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if c.crawlPrefecture(ctx, p, &sum) {
			sum.Prefectures++
		}
	}
	return sum, nil
}

func (c *Crawler) crawlPrefecture(ctx context.Context, p Link, sum *Summary) bool {
	base := c.base()
	doc, err := c.F.Document(ctx, p.URL)
	if err != nil {
		c.skip("prefecture_fetch_error", "prefecture", p.Key, "err", err)
		return false
	}
	cities := ExtractCities(doc, base)
	if len(cities) == 0 {
		c.skip("cities_not_found", "prefecture", p.Key)
		return false
	}
	c.Log.Info("cities_found", "prefecture", p.Key, "name", p.Name, "count", len(cities))
	if err := utils.WriteJSON(filepath.Join(c.IndexDir, p.Key+".json"), cities, true); err != nil {
		c.Log.Warn("city_index_write_error", "prefecture", p.Key, "err", err)
	}
	for _, city := range cities {
		if ctx.Err() != nil {
			return true
		}
		reviews := c.crawlCity(ctx, p, city)
		sum.Cities++
		if len(reviews) == 0 {
			c.Log.Info("city_no_reviews", "prefecture", p.Key, "city", city.Name)
			continue
		}
		path := filepath.Join(c.OutDir, p.Key, safeName(city.Name)+".txt")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			c.Log.Warn("reviews_write_error", "path", path, "err", err)
			continue
		}
		if err := os.WriteFile(path, []byte(strings.Join(reviews, "\n")), 0o644); err != nil {
			c.Log.Warn("reviews_write_error", "path", path, "err", err)
			continue
		}
		sum.Files++
		sum.Reviews += len(reviews)
		metrics.ReviewsSavedTotal.Add(float64(len(reviews)))
		c.Log.Info("reviews_written", "path", path, "count", len(reviews))
	}
	return true
}

func (c *Crawler) crawlCity(ctx context.Context, p Link, city Link) []string {
	doc, err := c.F.Document(ctx, city.URL)
	if err != nil {
		c.skip("city_fetch_error", "prefecture", p.Key, "city", city.Name, "err", err)
		return nil
	}
	rsts := ExtractRestaurants(doc, c.base())
	if len(rsts) == 0 {
		c.skip("restaurants_not_found", "prefecture", p.Key, "city", city.Name)
		return nil
	}
	var out []string
	for _, rst := range rsts {
		if ctx.Err() != nil {
			break
		}
		rdoc, err := c.F.Document(ctx, rst+"dtlrvwlst/?lc=2")
		if err != nil {
			c.skip("review_list_fetch_error", "url", rst, "err", err)
			continue
		}
		out = append(out, c.Reviews(ctx, rdoc)...)
	}
	return out
}

// 文档注释：从口コミ列表页提取口コミ正文
// 背景：列表页对长口コミ只显示摘要，带“全部显示”触发器的条目需打开详情页取全文。
// 约束：详情 URL 去掉 "&amp;" 后拼接 BaseURL；详情页失败时该条跳过；正文为空的条目不输出。
func (c *Crawler) Reviews(ctx context.Context, doc *goquery.Document) []string {
	var out []string
	doc.Find("div.rvw-item__contents").Each(func(_ int, item *goquery.Selection) {
		text := ""
		if item.Find("span.rvw-showall-trigger__target").Length() > 0 {
			a := item.Find("a.c-link-circle.js-link-bookmark-detail").First()
			detail, ok := a.Attr("data-detail-url")
			if !ok || detail == "" {
				return
			}
			full := resolve(c.base(), strings.ReplaceAll(detail, "&amp;", ""))
			ddoc, err := c.F.Document(ctx, full)
			if err != nil {
				c.Log.Warn("review_detail_fetch_error", "url", full, "err", err)
				return
			}
			text = commentText(ddoc.Selection)
		} else {
			text = commentText(item)
		}
		if strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	})
	return out
}

func (c *Crawler) base() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Crawler) skip(event string, args ...any) {
	metrics.RegionsSkippedTotal.WithLabelValues("scrape", event).Inc()
	c.Log.Warn(event, args...)
}

func safeName(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}
