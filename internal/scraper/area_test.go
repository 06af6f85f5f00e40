package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	assert.Equal(t, "https://tabelog.com/rstLst/2/?vs=1&sa=A1300&sw=%E5%AF%BF%E5%8F%B8&SrtT=rt",
		SearchURL(DefaultBaseURL, "A1300", "寿司", 2, SortRating))
	assert.Equal(t, "https://tabelog.com/tokyo/rstLst/1/?vs=1&SrtT=rht",
		SearchURL(DefaultBaseURL, "tokyo", "", 1, SortNew))
	assert.Equal(t, "https://tabelog.com/A/rstLst/1/?vs=1&SrtT=trend",
		SearchURL(DefaultBaseURL, "A", "", 1, SortPopular))
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortPopular, s)
	s, err = ParseSort("Rating")
	require.NoError(t, err)
	assert.Equal(t, SortRating, s)
	_, err = ParseSort("cheap")
	assert.Error(t, err)
}

func TestPageURLs(t *testing.T) {
	rst := "https://tabelog.com/tokyo/r1/"
	got := PageURLs(rst, rst+"dtlrvwlst/", 3)
	assert.Equal(t, []string{
		rst + "dtlrvwlst/3/",
		rst + "reviews/page-3/",
		rst + "dtlrvwlst/3/",
		rst + "reviews/?page=3",
		rst + "reviews/?PG=3",
	}, got)
	assert.Equal(t, rst+"reviews/?sort=rating/page-2/", PageURLs(rst, rst+"reviews/?sort=rating", 2)[0])
}

func areaStub(t *testing.T) *httptest.Server {
	t.Helper()
	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokyo/rstLst/1/":
			fmt.Fprintf(w, `<a class="list-rst__rst-name-target" href="%s/tokyo/r1/">A</a><a class="c-pagination__arrow--next" href="#">次</a>`, base)
		case "/tokyo/rstLst/2/":
			_, _ = io.WriteString(w, `<a class="list-rst__rst-name-target" href="/tokyo/r2/">B</a>`)
		case "/tokyo/r1/reviews/":
			_, _ = io.WriteString(w, `<h1 class="fn"> 店A </h1>
<div class="rvw-item"><a class="rvw-item__title-target" href="/tokyo/r1/dtlrvwdtl/D1/">t</a>
<a class="rvw-item__reviewer-name">太郎</a><div class="rvw-item__date">2024/01/02</div><span class="c-rating__val">3.5</span></div>`)
		case "/tokyo/r2/dtlrvwlst/":
			switch {
			case r.URL.RawQuery == "rvw_sort=rating":
				_, _ = io.WriteString(w, `<div class="rstinfo-table__name">店B</div><a class="c-pagination__num">1</a><a class="c-pagination__num">2</a>`)
			case strings.Contains(r.URL.RawQuery, "page-1"):
				_, _ = io.WriteString(w, `
<div class="review-item"><a class="review-title" href="/tokyo/r2/dtlrvwdtl/D2/">x</a></div>
<div class="review-item"><a class="review-title" href="/tokyo/r1/dtlrvwdtl/D1/">dup</a></div>`)
			default:
				http.NotFound(w, r)
			}
		case "/tokyo/r2/dtlrvwlst/2/":
			_, _ = io.WriteString(w, `<div data-rvw-id="9"><a class="rvw-item__title-target" href="/tokyo/r2/dtlrvwdtl/D3/">x</a></div>`)
		case "/tokyo/r1/dtlrvwdtl/D1/":
			_, _ = io.WriteString(w, `<div id="rvw-comment__text"> とても美味しい </div>`)
		case "/tokyo/r2/dtlrvwdtl/D2/":
			_, _ = io.WriteString(w, `<p class="review-text">普通</p>`)
		case "/tokyo/r2/dtlrvwdtl/D3/":
			_, _ = io.WriteString(w, `<html></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	base = srv.URL
	t.Cleanup(srv.Close)
	return srv
}

func TestAreaScraperRunFallsThroughStrategies(t *testing.T) {
	srv := areaStub(t)
	f, _ := testFetcher(srv.Client())
	f.Retries = 0
	a := NewAreaScraper(f)
	a.BaseURL = srv.URL
	a.Log = slog.New(slog.NewTextHandler(io.Discard, nil))

	got, err := a.Run(context.Background(), "tokyo", "", SortPopular)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Review{
		Restaurant: "店A", Reviewer: "太郎", Date: "2024/01/02", Rating: "3.5", Text: "とても美味しい",
		URL: srv.URL + "/tokyo/r1/reviews/?sort=rating/page-1/", Page: 1, Sort: "popular",
	}, got[0])
	assert.Equal(t, "店B", got[1].Restaurant)
	assert.Equal(t, "普通", got[1].Text)
	assert.Equal(t, "不明", got[1].Reviewer)
	assert.Equal(t, "不明", got[1].Rating)
}

func TestAreaScraperUnreachableRestaurant(t *testing.T) {
	srv := areaStub(t)
	f, _ := testFetcher(srv.Client())
	f.Retries = 0
	a := NewAreaScraper(f)
	a.BaseURL = srv.URL
	a.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := a.ScrapeRestaurant(context.Background(), srv.URL+"/tokyo/none/", SortPopular)
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestWriteCSV(t *testing.T) {
	rs := []Review{{Restaurant: "店A", Reviewer: "太郎", Date: "d", Rating: "3.5", Text: "美味しい,また", URL: "u", Page: 2, Sort: "rating"}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rs, false))
	assert.Equal(t, "\ufeffレストラン名,投稿者,投稿日,評価,口コミ,URL,ページ,ソート方法\n店A,太郎,d,3.5,\"美味しい,また\",u,2,rating\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, rs, true))
	assert.Equal(t, "\ufeff口コミ\n\"美味しい,また\"\n", buf.String())
}
