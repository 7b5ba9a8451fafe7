package frames

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize 每批并发获取的帧数
	DefaultBatchSize = 5
	// DefaultFrameTimeout 单帧获取超时，避免一个卡死的请求拖住整批
	DefaultFrameTimeout = 15 * time.Second
)

// Progress 是每批完成后上报的预加载进度
type Progress struct {
	Batch     int // 已完成批次（1 起始）
	Batches   int // 总批次
	Completed int // 已尝试的帧数（含失败）
	Total     int // 帧总数 N
	Failed    int // 本次预加载中失败的帧数
	Percent   int // round(Completed / Total * 100)
}

// Done 判断预加载是否已全部完成
func (p Progress) Done() bool {
	return p.Completed >= p.Total
}

// PreloadOptions 预加载参数
type PreloadOptions struct {
	BatchSize    int           // <= 0 时使用 DefaultBatchSize
	FrameTimeout time.Duration // <= 0 时不限时
	OnProgress   func(Progress)
	Logger       *slog.Logger
}

// Preloader 按固定大小的批次预加载整个帧序列
//
// 批内并发、批间串行，批大小就是同时在途请求数的上限。
// 单帧失败不会中止预加载，也不会重试：缓存中记录名义 URL 和错误，
// 由渲染端显示占位图。
type Preloader struct {
	seq     Sequence
	fetcher Fetcher
	cache   *Cache

	batchSize    int
	frameTimeout time.Duration
	onProgress   func(Progress)
	logger       *slog.Logger
}

// NewPreloader 创建预加载器，结果写入 cache
func NewPreloader(seq Sequence, fetcher Fetcher, cache *Cache, opts PreloadOptions) *Preloader {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Preloader{
		seq:          seq,
		fetcher:      fetcher,
		cache:        cache,
		batchSize:    batchSize,
		frameTimeout: opts.FrameTimeout,
		onProgress:   opts.OnProgress,
		logger:       logger.With("component", "Preloader"),
	}
}

// Batches 返回批次数 ceil(N / batchSize)
func (p *Preloader) Batches() int {
	return (p.seq.Count() + p.batchSize - 1) / p.batchSize
}

// Run 预加载所有帧，阻塞直到每一帧都被尝试过
//
// 返回值只在 ctx 被取消时非 nil（播放器卸载），此时未完成的结果被丢弃。
func (p *Preloader) Run(ctx context.Context) error {
	total := p.seq.Count()
	batches := p.Batches()
	failed := 0
	lastPercent := 0

	p.logger.Debug("preload started", "frames", total, "batch_size", p.batchSize, "batches", batches)
	started := time.Now()

	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		first := b*p.batchSize + 1
		last := min(first+p.batchSize-1, total)

		// 任务函数从不返回错误，errgroup 只用来等待整批结束
		results := make([]Entry, last-first+1)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.batchSize)
		for i := first; i <= last; i++ {
			g.Go(func() error {
				results[i-first] = p.fetchOne(gctx, i)
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			p.logger.Debug("preload abandoned", "batch", b+1)
			return err
		}

		for _, e := range results {
			if !e.OK() {
				failed++
				p.logger.Warn("frame preload failed", "frame", e.Index, "url", e.URL, "err", e.Err)
			}
			p.cache.Record(e)
		}

		percent := Percent(last, total)
		if percent < lastPercent {
			percent = lastPercent
		}
		lastPercent = percent

		if p.onProgress != nil {
			p.onProgress(Progress{
				Batch:     b + 1,
				Batches:   batches,
				Completed: last,
				Total:     total,
				Failed:    failed,
				Percent:   percent,
			})
		}
	}

	p.logger.Info("preload finished", "frames", total, "failed", failed, "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

// fetchOne 获取单帧，失败时仍返回带名义 URL 的记录
func (p *Preloader) fetchOne(ctx context.Context, index int) Entry {
	entry := Entry{Index: index, URL: p.seq.URL(index)}

	if p.frameTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.frameTimeout)
		defer cancel()
	}

	img, err := p.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Image = img
	return entry
}

// Percent 计算整数百分比（四舍五入），结果限制在 [0, 100]
func Percent(completed, total int) int {
	if total <= 0 {
		return 100
	}
	if completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return (completed*200 + total) / (2 * total)
}
