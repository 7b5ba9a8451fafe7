package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"net/http"
	"net/url"
)

var (
	// ErrBadStatus 表示图片服务返回了非 2xx 状态码
	ErrBadStatus = errors.New("bad status code")
	// ErrFrameTooLarge 响应体超过 MaxBytes
	ErrFrameTooLarge = errors.New("frame exceeds size limit")
)

// DefaultMaxFrameBytes 单帧响应体上限（预报 PNG 通常在 1MB 以内）
const DefaultMaxFrameBytes = 16 << 20

// defaultUserAgent 部分 CDN 会拒绝没有浏览器 UA 的请求
const defaultUserAgent = "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36 MarejadasUV"

// Fetcher 获取并解码一帧图片
type Fetcher interface {
	Fetch(ctx context.Context, rawurl string) (image.Image, error)
}

// FetcherFunc 让普通函数实现 Fetcher
type FetcherFunc func(ctx context.Context, rawurl string) (image.Image, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, rawurl string) (image.Image, error) {
	return f(ctx, rawurl)
}

// HTTPFetcher fetches frames from the forecast image server.
// The server is treated as a read-only blob store; there is no retry here,
// callers bound each request with a context deadline.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	// MaxBytes 响应体上限，<= 0 时使用 DefaultMaxFrameBytes
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher using a client without a global timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: 0},
		UserAgent: defaultUserAgent,
		MaxBytes:  DefaultMaxFrameBytes,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawurl string) (image.Image, error) {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" {
		return nil, fmt.Errorf("url missing scheme: %s", rawurl)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxFrameBytes
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFrameTooLarge, rawurl, resp.ContentLength)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", rawurl, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFrameTooLarge, rawurl, limit)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", rawurl, err)
	}
	return img, nil
}
