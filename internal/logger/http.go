// 包 logger：出站 HTTP 请求日志，记录抓取链路的关键维度（方法、地址、状态、耗时、字节数）
package logger

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport：包装 RoundTripper 以记录每次出站请求
// 背景：抓取工具串行访问外部站点，失败多为 4xx/5xx 或网络错误，需要逐请求可追溯
// 约束：不读取响应体，字节数取自 Content-Length（未知时为 -1）
type Transport struct {
	Base http.RoundTripper
	Log  *slog.Logger
}

// NewTransport：以 base 为底层创建日志传输层，base 为空时使用 http.DefaultTransport
func NewTransport(base http.RoundTripper, l *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if l == nil {
		l = L()
	}
	return &Transport{Base: base, Log: l}
}

// RoundTrip：透传请求并记录结果
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(r)
	dur := time.Since(start)
	if err != nil {
		t.Log.Debug("http_out_error",
			"method", r.Method,
			"url", r.URL.String(),
			"duration_ms", dur.Milliseconds(),
			"err", err,
		)
		return nil, err
	}
	t.Log.Debug("http_out",
		"method", r.Method,
		"url", r.URL.String(),
		"status", resp.StatusCode,
		"bytes", resp.ContentLength,
		"duration_ms", dur.Milliseconds(),
	)
	return resp, nil
}
