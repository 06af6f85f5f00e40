package scraper

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wordmap/internal/logger"
	"wordmap/internal/utils"

	"github.com/PuerkitoBio/goquery"
)

// SortType：检索结果排序
type SortType string

const (
	SortPopular SortType = "popular"
	SortRating  SortType = "rating"
	SortNew     SortType = "new"
)

// ParseSort：空串视为 popular
func ParseSort(s string) (SortType, error) {
	switch SortType(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortPopular:
		return SortPopular, nil
	case SortRating:
		return SortRating, nil
	case SortNew:
		return SortNew, nil
	}
	return "", fmt.Errorf("unknown sort %q (popular|rating|new)", s)
}

func (s SortType) param() string {
	switch s {
	case SortPopular:
		return "trend"
	case SortRating:
		return "rt"
	case SortNew:
		return "rht"
	}
	return ""
}

var reAreaCode = regexp.MustCompile(`^A\d+$`)

// 文档注释：构造店铺检索 URL
// 约束：A1300 形式的地域代码走 /rstLst/<page>/?vs=1&sa=<code>，其余视为地域名走 /<name>/rstLst/<page>/?vs=1；
// 关键词追加 &sw=，排序追加 &SrtT=。
func SearchURL(base, area, keyword string, page int, sort SortType) string {
	q := ""
	if keyword != "" {
		q += "&sw=" + url.QueryEscape(keyword)
	}
	if p := sort.param(); p != "" {
		q += "&SrtT=" + p
	}
	if reAreaCode.MatchString(area) {
		return fmt.Sprintf("%s/rstLst/%d/?vs=1&sa=%s%s", base, page, area, q)
	}
	return fmt.Sprintf("%s/%s/rstLst/%d/?vs=1%s", base, area, page, q)
}

var (
	nameSelectors       = []string{"h2.display-name", "h2.rstname", "h1.rstname", "h1.fn", "div.rstinfo-table__name"}
	paginationSelectors = []string{"a.c-pagination__num", "a.page-link"}
	reviewSelectors     = []string{"div.rvw-item", "div.review-item", "div.js-rvw-item-clickable-area", "div[data-rvw-id]"}
	textSelectors       = []string{"div#rvw-comment__text", "p.rvw-item__rvw-comment", "p.review-text", "div.rvw-item__rvw-comment", "div.review-comment"}
)

func reviewBaseURLs(rst string) []string {
	return []string{
		rst + "dtlrvwlst/?rvw_sort=rating",
		rst + "reviews/?sort=rating",
		rst + "dtlrvwlst/",
		rst + "reviews/",
	}
}

// PageURLs：第 n 页的候选 URL，首个由口コミ基准 URL 推出，其余为备用模式
func PageURLs(rst, reviewBase string, n int) []string {
	primary := fmt.Sprintf("%s/page-%d/", reviewBase, n)
	if strings.HasSuffix(reviewBase, "/") {
		primary = fmt.Sprintf("%s%d/", reviewBase, n)
	}
	return []string{
		primary,
		fmt.Sprintf("%sreviews/page-%d/", rst, n),
		fmt.Sprintf("%sdtlrvwlst/%d/", rst, n),
		fmt.Sprintf("%sreviews/?page=%d", rst, n),
		fmt.Sprintf("%sreviews/?PG=%d", rst, n),
	}
}

// Review：一条口コミ
type Review struct {
	Restaurant string
	Reviewer   string
	Date       string
	Rating     string
	Text       string
	URL        string
	Page       int
	Sort       string
}

// AreaScraper：按地域与关键词检索店铺并抓取口コミ全文
type AreaScraper struct {
	F            *Fetcher
	BaseURL      string
	CommentsOnly bool
	// MaxSearchPages：检索结果最多翻页数，0 表示直到没有下一页
	MaxSearchPages     int
	RestaurantPauseMin time.Duration
	RestaurantPauseMax time.Duration
	Log                *slog.Logger
	seen               map[string]struct{}
}

func NewAreaScraper(f *Fetcher) *AreaScraper {
	return &AreaScraper{
		F:                  f,
		BaseURL:            DefaultBaseURL,
		RestaurantPauseMin: 3 * time.Second,
		RestaurantPauseMax: 7 * time.Second,
		Log:                logger.Component("scraper"),
	}
}

func (a *AreaScraper) base() string {
	if a.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(a.BaseURL, "/")
}

// Search：检索结果一页的店铺 URL，以及是否存在下一页
func (a *AreaScraper) Search(ctx context.Context, area, keyword string, page int, sort SortType) ([]string, bool, error) {
	u := SearchURL(a.base(), area, keyword, page, sort)
	doc, err := a.F.Document(ctx, u)
	if err != nil {
		return nil, false, fmt.Errorf("search page %d: %w", page, err)
	}
	links := ExtractRestaurants(doc, a.base())
	next := doc.Find("a.c-pagination__arrow--next").Length() > 0
	a.Log.Info("search_page", "url", u, "restaurants", len(links), "next", next)
	return links, next, nil
}

func maxPages(ctx context.Context, doc *goquery.Document) int {
	ss := make([]Strategy[int], 0, len(paginationSelectors))
	for _, sel := range paginationSelectors {
		sel := sel
		ss = append(ss, Strategy[int]{Name: sel, Try: func(context.Context) (int, bool) {
			nums := doc.Find(sel)
			if nums.Length() == 0 {
				return 0, false
			}
			n, err := strconv.Atoi(strings.TrimSpace(nums.Last().Text()))
			return n, err == nil && n > 0
		}})
	}
	n, _, err := FirstOK(ctx, "pagination", ss)
	if err != nil {
		return 1
	}
	return n
}

// 文档注释：抓取一家店铺的全部口コミ
// 背景：店铺页有新旧两套 URL 与 DOM，口コミ入口、页码、条目、正文都按候选顺序回退。
// 约束：口コミ入口全部失败时返回 ErrNoStrategy；单页或单条失败只跳过；同一详情 URL 在整个 AreaScraper 生命周期内只收录一次。
func (a *AreaScraper) ScrapeRestaurant(ctx context.Context, rst string, sort SortType) ([]Review, error) {
	if !strings.HasSuffix(rst, "/") {
		rst += "/"
	}
	if a.seen == nil {
		a.seen = map[string]struct{}{}
	}
	first, _, err := FirstOK(ctx, "review_base", Pages(a.F, reviewBaseURLs(rst)...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rst, err)
	}
	name := TextOr(ctx, "restaurant_name", "不明", first.Doc.Selection, nameSelectors...)
	pages := maxPages(ctx, first.Doc)
	a.Log.Info("restaurant_reviews", "restaurant", name, "base", first.URL, "pages", pages)

	var out []Review
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		pg, _, err := FirstOK(ctx, "review_page", Pages(a.F, PageURLs(rst, first.URL, n)...))
		if err != nil {
			a.Log.Warn("review_page_error", "restaurant", name, "page", n, "err", err)
			continue
		}
		items, _, err := FirstOK(ctx, "review_items", Selectors(pg.Doc.Selection, reviewSelectors...))
		if err != nil {
			a.Log.Warn("review_items_not_found", "url", pg.URL)
			continue
		}
		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if ctx.Err() != nil {
				return false
			}
			r, ok := a.review(ctx, item)
			if !ok {
				return true
			}
			r.Restaurant = name
			r.URL = pg.URL
			r.Page = n
			r.Sort = string(sort)
			out = append(out, r)
			return true
		})
	}
	return out, nil
}

func (a *AreaScraper) review(ctx context.Context, item *goquery.Selection) (Review, bool) {
	link, _, err := FirstOK(ctx, "detail_link", Selectors(item, "a.rvw-item__title-target", "a.review-title"))
	if err != nil {
		return Review{}, false
	}
	href, ok := link.First().Attr("href")
	if !ok || href == "" {
		return Review{}, false
	}
	if !strings.HasPrefix(href, "http") {
		href = a.base() + href
	}
	if _, dup := a.seen[href]; dup {
		return Review{}, false
	}
	a.seen[href] = struct{}{}
	ddoc, err := a.F.Document(ctx, href)
	if err != nil {
		return Review{}, false
	}
	text := TextOr(ctx, "review_text", "", ddoc.Selection, textSelectors...)
	if text == "" {
		a.Log.Debug("review_text_not_found", "url", href)
		return Review{}, false
	}
	return Review{
		Reviewer: textOf(item, "a.rvw-item__reviewer-name"),
		Date:     textOf(item, "div.rvw-item__date"),
		Rating:   textOf(item, "span.c-rating__val"),
		Text:     text,
	}, true
}

func textOf(s *goquery.Selection, sel string) string {
	e := s.Find(sel).First()
	if e.Length() == 0 {
		return "不明"
	}
	return strings.TrimSpace(e.Text())
}

// 文档注释：按检索结果逐页逐店抓取
// 约束：第一页检索失败返回错误，后续页失败则结束翻页；单店失败记录后继续；店铺之间随机暂停。
func (a *AreaScraper) Run(ctx context.Context, area, keyword string, sort SortType) ([]Review, error) {
	var out []Review
	for page := 1; ; page++ {
		links, next, err := a.Search(ctx, area, keyword, page, sort)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			a.Log.Warn("search_page_error", "page", page, "err", err)
			break
		}
		for _, l := range links {
			rs, err := a.ScrapeRestaurant(ctx, l, sort)
			if err != nil {
				a.Log.Warn("restaurant_skipped", "url", l, "err", err)
			}
			out = append(out, rs...)
			if err := a.F.Pause(ctx, a.RestaurantPauseMin, a.RestaurantPauseMax); err != nil {
				return out, err
			}
		}
		if !next || (a.MaxSearchPages > 0 && page >= a.MaxSearchPages) {
			break
		}
	}
	return out, nil
}

var (
	fullHeader    = []string{"レストラン名", "投稿者", "投稿日", "評価", "口コミ", "URL", "ページ", "ソート方法"}
	commentHeader = []string{"口コミ"}
)

// WriteCSV：UTF-8 BOM + 表头；commentsOnly 时只有口コミ列
func WriteCSV(w io.Writer, rs []Review, commentsOnly bool) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := fullHeader
	if commentsOnly {
		header = commentHeader
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rs {
		row := []string{r.Text}
		if !commentsOnly {
			row = []string{r.Restaurant, r.Reviewer, r.Date, r.Rating, r.Text, r.URL, strconv.Itoa(r.Page), r.Sort}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV：原子写出 CSV 文件
func SaveCSV(path string, rs []Review, commentsOnly bool) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rs, commentsOnly); err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, buf.Bytes())
}
