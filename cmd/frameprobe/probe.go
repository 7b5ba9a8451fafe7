package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/decker502/marejadas/pkg/frames"
)

// probeResult 一次完整预加载的结果
type probeResult struct {
	Dataset string
	Total   int
	Failed  []frames.Entry
	Elapsed time.Duration
}

// probe 运行预加载器并收集失败的帧
func probe(ctx context.Context, seq frames.Sequence, fetcher frames.Fetcher, opts frames.PreloadOptions) (probeResult, error) {
	cache := frames.NewCache()
	started := time.Now()
	if err := frames.NewPreloader(seq, fetcher, cache, opts).Run(ctx); err != nil {
		return probeResult{}, err
	}
	return probeResult{
		Total:   seq.Count(),
		Failed:  cache.Failed(),
		Elapsed: time.Since(started),
	}, nil
}

// runPlain 每批输出一行进度
func runPlain(ctx context.Context, out io.Writer, name string, seq frames.Sequence, fetcher frames.Fetcher, opts frames.PreloadOptions) (probeResult, error) {
	fmt.Fprintf(out, "Precargando %s (%d frames)\n", name, seq.Count())
	opts.OnProgress = func(p frames.Progress) {
		fmt.Fprintf(out, "batch %d/%d  %3d%%  failed=%d\n", p.Batch, p.Batches, p.Percent, p.Failed)
	}
	result, err := probe(ctx, seq, fetcher, opts)
	result.Dataset = name
	return result, err
}

// writeSummary 输出失败帧列表
func writeSummary(out io.Writer, r probeResult) {
	ok := r.Total - len(r.Failed)
	fmt.Fprintf(out, "%d/%d frames loaded in %s\n", ok, r.Total, r.Elapsed.Round(time.Millisecond))
	if len(r.Failed) == 0 {
		return
	}
	fmt.Fprintln(out, "Frames no disponibles:")
	for _, e := range r.Failed {
		fmt.Fprintf(out, "  #%-3d %s\n      %v\n", e.Index, e.URL, e.Err)
	}
}

// renderBar 文本进度条
func renderBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := width * percent / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
