package frames

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func tinyImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 2, G: 132, B: 199, A: 255})
	return img
}

// okFetcher 总是成功，并记录批内最大并发数
type okFetcher struct {
	inflight    atomic.Int32
	maxInflight atomic.Int32
	calls       atomic.Int32
	delay       time.Duration
}

func (f *okFetcher) Fetch(ctx context.Context, rawurl string) (image.Image, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxInflight.Load()
		if n <= m || f.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return tinyImage(), nil
}

// TestPreloadProgressSequence N=61、批大小 5 时的进度序列
func TestPreloadProgressSequence(t *testing.T) {
	seq := mustSequence(t, 61)
	cache := NewCache()
	var got []Progress

	p := NewPreloader(seq, &okFetcher{}, cache, PreloadOptions{
		BatchSize:  5,
		OnProgress: func(pr Progress) { got = append(got, pr) },
	})

	if p.Batches() != 13 {
		t.Fatalf("Batches() = %d, want 13", p.Batches())
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []int{8, 16, 25, 33, 41, 49, 57, 66, 74, 82, 90, 98, 100}
	if len(got) != len(want) {
		t.Fatalf("got %d progress updates, want %d", len(got), len(want))
	}
	for i, pr := range got {
		if pr.Percent != want[i] {
			t.Errorf("batch %d: percent = %d, want %d", i+1, pr.Percent, want[i])
		}
		if pr.Batch != i+1 || pr.Batches != 13 {
			t.Errorf("batch %d: got Batch=%d Batches=%d", i+1, pr.Batch, pr.Batches)
		}
	}

	// 最后一批只有 1 帧
	if last := got[len(got)-1]; last.Completed-got[len(got)-2].Completed != 1 {
		t.Errorf("last batch size = %d, want 1", last.Completed-got[len(got)-2].Completed)
	}
	if !got[len(got)-1].Done() {
		t.Error("final progress should be Done()")
	}
	if cache.Len() != 61 {
		t.Errorf("cache.Len() = %d, want 61", cache.Len())
	}
}

// TestPreloadToleratesFailures 失败不中止预加载、进度仍达到 100
func TestPreloadToleratesFailures(t *testing.T) {
	seq := mustSequence(t, 12)
	cache := NewCache()
	errBoom := errors.New("boom")

	fetcher := FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
		if strings.HasSuffix(rawurl, "Campo3.png") || strings.HasSuffix(rawurl, "Campo12.png") {
			return nil, errBoom
		}
		return tinyImage(), nil
	})

	var percents []int
	var last Progress
	p := NewPreloader(seq, fetcher, cache, PreloadOptions{
		BatchSize: 5,
		OnProgress: func(pr Progress) {
			percents = append(percents, pr.Percent)
			last = pr
		},
	})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress decreased: %v", percents)
		}
	}
	if last.Percent != 100 {
		t.Errorf("final percent = %d, want 100", last.Percent)
	}
	if last.Failed != 2 {
		t.Errorf("Failed = %d, want 2", last.Failed)
	}

	e, ok := cache.Get(3)
	if !ok {
		t.Fatal("failed frame 3 should still be recorded")
	}
	if e.URL != seq.URL(3) {
		t.Errorf("failed frame URL = %q, want nominal %q", e.URL, seq.URL(3))
	}
	if !errors.Is(e.Err, errBoom) {
		t.Errorf("failed frame Err = %v, want boom", e.Err)
	}

	failed := cache.Failed()
	if len(failed) != 2 || failed[0].Index != 3 || failed[1].Index != 12 {
		t.Errorf("Failed() = %+v, want frames 3 and 12", failed)
	}
}

// TestPreloadBoundedConcurrency 批内并发不超过批大小
func TestPreloadBoundedConcurrency(t *testing.T) {
	seq := mustSequence(t, 23)
	f := &okFetcher{delay: 5 * time.Millisecond}
	p := NewPreloader(seq, f, NewCache(), PreloadOptions{BatchSize: 4})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if f.calls.Load() != 23 {
		t.Errorf("fetch calls = %d, want 23", f.calls.Load())
	}
	if m := f.maxInflight.Load(); m > 4 {
		t.Errorf("max concurrent fetches = %d, want <= 4", m)
	}
}

// TestPreloadFrameTimeout 卡死的请求按单帧超时记为失败，不阻塞整批
func TestPreloadFrameTimeout(t *testing.T) {
	seq := mustSequence(t, 5)
	cache := NewCache()
	fetcher := FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
		if strings.HasSuffix(rawurl, "Campo2.png") {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return tinyImage(), nil
	})

	p := NewPreloader(seq, fetcher, cache, PreloadOptions{BatchSize: 5, FrameTimeout: 20 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() hung on a stuck request")
	}

	e, _ := cache.Get(2)
	if !errors.Is(e.Err, context.DeadlineExceeded) {
		t.Errorf("frame 2 Err = %v, want DeadlineExceeded", e.Err)
	}
	if cache.Len() != 5 {
		t.Errorf("cache.Len() = %d, want 5", cache.Len())
	}
}

// TestPreloadCancel 卸载时放弃剩余批次
func TestPreloadCancel(t *testing.T) {
	seq := mustSequence(t, 61)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	updates := 0
	p := NewPreloader(seq, &okFetcher{}, NewCache(), PreloadOptions{
		BatchSize: 5,
		OnProgress: func(Progress) {
			mu.Lock()
			updates++
			if updates == 2 {
				cancel()
			}
			mu.Unlock()
		},
	})

	err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if updates != 2 {
		t.Errorf("progress updates after cancel = %d, want 2", updates)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct{ completed, total, want int }{
		{0, 61, 0},
		{5, 61, 8},
		{40, 61, 66},
		{60, 61, 98},
		{61, 61, 100},
		{70, 61, 100},
		{1, 2, 50},
		{0, 0, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.completed, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

// TestHTTPFetcher 使用 httptest 服务验证解码与状态码处理
func TestHTTPFetcher(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/images/SAM/pacifico/Campo1.png":
			w.Header().Set("Content-Type", "image/png")
			_ = png.Encode(w, tinyImage())
		case "/images/SAM/pacifico/Campo2.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	ctx := context.Background()

	img, err := f.Fetch(ctx, srv.URL+"/images/SAM/pacifico/Campo1.png")
	if err != nil {
		t.Fatalf("Fetch(Campo1) error: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("decoded width = %d, want 2", img.Bounds().Dx())
	}
	if !strings.Contains(gotUA, "MarejadasUV") {
		t.Errorf("User-Agent = %q, want MarejadasUV marker", gotUA)
	}

	if _, err := f.Fetch(ctx, srv.URL+"/images/SAM/pacifico/Campo2.png"); err == nil {
		t.Error("Fetch(Campo2) expected decode error")
	}

	_, err = f.Fetch(ctx, srv.URL+"/images/SAM/pacifico/Campo99.png")
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("Fetch(Campo99) error = %v, want ErrBadStatus", err)
	}

	if _, err := f.Fetch(ctx, "marejadas.uv.cl/Campo1.png"); err == nil {
		t.Error("Fetch without scheme expected error")
	}
}

// TestHTTPFetcherSizeLimit 超过上限的响应体不解码
func TestHTTPFetcherSizeLimit(t *testing.T) {
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, tinyImage()); err != nil {
		t.Fatalf("png.Encode error: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/small.png":
			_, _ = w.Write(encoded.Bytes())
		case "/chunked.png":
			// 不设置 Content-Length，分块写出
			w.(http.Flusher).Flush()
			for i := 0; i < 8; i++ {
				_, _ = w.Write(bytes.Repeat([]byte{0}, 1024))
			}
		case "/declared.png":
			w.Header().Set("Content-Length", "1048576")
			_, _ = w.Write(bytes.Repeat([]byte{0}, 4096))
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	f.MaxBytes = 4096
	ctx := context.Background()

	if _, err := f.Fetch(ctx, srv.URL+"/small.png"); err != nil {
		t.Fatalf("Fetch(small) error: %v", err)
	}
	for _, path := range []string{"/chunked.png", "/declared.png"} {
		if _, err := f.Fetch(ctx, srv.URL+path); !errors.Is(err, ErrFrameTooLarge) {
			t.Errorf("Fetch(%s) error = %v, want ErrFrameTooLarge", path, err)
		}
	}
}
