package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wordmap/internal/metrics"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoStrategy：链上所有策略都未产出结果
var ErrNoStrategy = errors.New("scraper: no strategy succeeded")

// Strategy：回退链中的一个候选
type Strategy[T any] struct {
	Name string
	Try  func(ctx context.Context) (T, bool)
}

// 文档注释：依次尝试策略，返回第一个成功的结果与其名称
// 背景：页面结构随改版变化，选择器与 URL 模式按优先级排列，前一个落空再试下一个。
// 约束：命中时累加 chain/strategy 计数；全部落空返回包装了 ErrNoStrategy 的错误；ctx 取消时立即返回。
func FirstOK[T any](ctx context.Context, chain string, ss []Strategy[T]) (T, string, error) {
	var zero T
	for _, s := range ss {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		if v, ok := s.Try(ctx); ok {
			metrics.StrategyHitsTotal.WithLabelValues(chain, s.Name).Inc()
			return v, s.Name, nil
		}
	}
	return zero, "", fmt.Errorf("%s: %w", chain, ErrNoStrategy)
}

// Selectors：每个 CSS 选择器一个策略，命中非空集合即成功
func Selectors(root *goquery.Selection, sels ...string) []Strategy[*goquery.Selection] {
	out := make([]Strategy[*goquery.Selection], 0, len(sels))
	for _, sel := range sels {
		sel := sel
		out = append(out, Strategy[*goquery.Selection]{
			Name: sel,
			Try: func(context.Context) (*goquery.Selection, bool) {
				s := root.Find(sel)
				return s, s.Length() > 0
			},
		})
	}
	return out
}

// TextSelectors：取第一个选择器命中且去空白后非空的文本
func TextSelectors(root *goquery.Selection, sels ...string) []Strategy[string] {
	out := make([]Strategy[string], 0, len(sels))
	for _, sel := range sels {
		sel := sel
		out = append(out, Strategy[string]{
			Name: sel,
			Try: func(context.Context) (string, bool) {
				t := strings.TrimSpace(root.Find(sel).First().Text())
				return t, t != ""
			},
		})
	}
	return out
}

// Pages：每个 URL 一个抓取策略，请求成功即命中；策略名为 url_<序号>
func Pages(f *Fetcher, urls ...string) []Strategy[page] {
	out := make([]Strategy[page], 0, len(urls))
	for i, u := range urls {
		u := u
		out = append(out, Strategy[page]{
			Name: fmt.Sprintf("url_%d", i),
			Try: func(ctx context.Context) (page, bool) {
				doc, err := f.Document(ctx, u)
				if err != nil {
					return page{}, false
				}
				return page{URL: u, Doc: doc}, true
			},
		})
	}
	return out
}

type page struct {
	URL string
	Doc *goquery.Document
}

// TextOr：文本策略链，全部落空时返回 def
func TextOr(ctx context.Context, chain, def string, root *goquery.Selection, sels ...string) string {
	v, _, err := FirstOK(ctx, chain, TextSelectors(root, sels...))
	if err != nil {
		return def
	}
	return v
}
