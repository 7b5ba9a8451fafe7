package player

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/decker502/marejadas/pkg/frames"
)

const testTemplate = "https://marejadas.uv.cl/images/SAM/pacifico/Campo{index}.png"

func testSequence(t *testing.T, n int) frames.Sequence {
	t.Helper()
	seq, err := frames.NewSequence(n, testTemplate)
	if err != nil {
		t.Fatalf("NewSequence error: %v", err)
	}
	return seq
}

var instantFetcher = frames.FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
})

// readyPlayer 创建并等待预加载完成的播放器
func readyPlayer(t *testing.T, n int) *Player {
	t.Helper()
	p := New(testSequence(t, n), instantFetcher, Options{BatchSize: 5})
	p.Start(context.Background())
	t.Cleanup(p.Close)

	select {
	case <-p.Preloaded():
	case <-time.After(2 * time.Second):
		t.Fatal("preload did not finish")
	}
	return p
}

// TestPlayerStateMachine 状态迁移
func TestPlayerStateMachine(t *testing.T) {
	gate := make(chan struct{})
	blocking := frames.FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	})

	p := New(testSequence(t, 10), blocking, Options{BatchSize: 5})
	defer p.Close()

	if got := p.State(); got != StateIdle {
		t.Fatalf("before Start: state = %v, want idle", got)
	}

	p.Start(context.Background())
	if got := p.State(); got != StatePreloading {
		t.Fatalf("after Start: state = %v, want preloading", got)
	}
	if err := p.Play(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Play() during preload error = %v, want ErrNotReady", err)
	}
	if _, err := p.EnterFullscreen(); !errors.Is(err, ErrNotReady) {
		t.Errorf("EnterFullscreen() during preload error = %v, want ErrNotReady", err)
	}

	close(gate)
	select {
	case <-p.Preloaded():
	case <-time.After(2 * time.Second):
		t.Fatal("preload did not finish")
	}

	if got := p.State(); got != StateReady {
		t.Fatalf("after preload: state = %v, want ready", got)
	}
	if pr := p.Progress(); pr.Percent != 100 {
		t.Errorf("progress = %d, want 100", pr.Percent)
	}

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if got := p.State(); got != StatePlaying {
		t.Errorf("after Play: state = %v, want playing", got)
	}

	p.Pause()
	if got := p.State(); got != StatePaused {
		t.Errorf("after Pause: state = %v, want paused", got)
	}

	if _, err := p.EnterFullscreen(); err != nil {
		t.Fatalf("EnterFullscreen() error: %v", err)
	}
	if got := p.State(); got != StateFullscreen {
		t.Errorf("in fullscreen: state = %v, want fullscreen", got)
	}

	p.ExitFullscreen()
	if got := p.State(); got != StatePaused {
		t.Errorf("after ExitFullscreen: state = %v, want paused", got)
	}

	p.Close()
	if got := p.State(); got != StateIdle {
		t.Errorf("after Close: state = %v, want idle", got)
	}
}

// TestPlayerStepScenario N=61 的首尾环绕场景
func TestPlayerStepScenario(t *testing.T) {
	p := readyPlayer(t, 61)

	p.Seek(61)
	if got := p.StepForward(); got != 1 {
		t.Errorf("StepForward from 61 = %d, want 1", got)
	}

	visited := []int{p.StepBack(), p.StepBack()}
	if visited[0] != 61 || visited[1] != 60 {
		t.Errorf("StepBack twice from 1 visited %v, want [61 60]", visited)
	}
}

// TestPlayerManualStepPauses 手动步进会暂停自动播放
func TestPlayerManualStepPauses(t *testing.T) {
	for _, step := range []struct {
		name string
		fn   func(p *Player) int
	}{
		{"forward", (*Player).StepForward},
		{"back", (*Player).StepBack},
		{"seek", func(p *Player) int { return p.Seek(30) }},
	} {
		t.Run(step.name, func(t *testing.T) {
			p := readyPlayer(t, 61)
			if err := p.Play(); err != nil {
				t.Fatalf("Play() error: %v", err)
			}

			frame := step.fn(p)
			if p.Playing() {
				t.Fatal("manual step should pause playback")
			}

			for i := 0; i < 20; i++ {
				p.Update(100 * time.Millisecond)
			}
			if p.Current() != frame {
				t.Errorf("frame changed to %d after manual step, want %d", p.Current(), frame)
			}
		})
	}
}

// TestPlayerPlaybackTiming 播放间隔与速率切换
func TestPlayerPlaybackTiming(t *testing.T) {
	p := readyPlayer(t, 61)
	if err := p.Play(); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	tick := 50 * time.Millisecond
	for i := 0; i < 4; i++ {
		p.Update(tick)
	}
	if p.Current() != 2 {
		t.Fatalf("after 200ms at 1x: frame = %d, want 2", p.Current())
	}

	// 已过 100ms 时切换到 0.5x，下一次前进在切换后 500ms
	p.Update(tick)
	p.Update(tick)
	p.SetRate(500 * time.Millisecond)
	for i := 0; i < 9; i++ {
		p.Update(tick)
	}
	if p.Current() != 2 {
		t.Errorf("450ms after rate change: frame = %d, want 2", p.Current())
	}
	p.Update(tick)
	if p.Current() != 3 {
		t.Errorf("500ms after rate change: frame = %d, want 3", p.Current())
	}
	if !p.Playing() {
		t.Error("SetRate should keep playing")
	}
}

// TestPlayerFullscreenSync 退出全屏时同步最后的帧和速率
func TestPlayerFullscreenSync(t *testing.T) {
	p := readyPlayer(t, 61)
	p.Seek(10)
	if err := p.Play(); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	fs, err := p.EnterFullscreen()
	if err != nil {
		t.Fatalf("EnterFullscreen() error: %v", err)
	}
	if p.Playing() {
		t.Error("inline playback should pause on entering fullscreen")
	}
	if fs.Current() != 10 || fs.VisibleFrame() != 10 {
		t.Errorf("fullscreen seeded with %d/%d, want 10", fs.Current(), fs.VisibleFrame())
	}
	if fs.Playing() {
		t.Error("fullscreen should start paused")
	}
	if again, _ := p.EnterFullscreen(); again != fs {
		t.Error("EnterFullscreen twice should return the open session")
	}

	fs.StepForward()
	fs.StepForward()
	fs.StepForward()
	fs.SetRate(100 * time.Millisecond)

	// 全屏打开时内联计时器不走；两次 tick 完成待定的翻转
	p.Update(time.Second)
	p.Update(time.Second)

	last := p.ExitFullscreen()
	if last != 13 {
		t.Errorf("ExitFullscreen() = %d, want 13", last)
	}
	if p.Current() != 13 {
		t.Errorf("inline frame after exit = %d, want 13", p.Current())
	}
	if p.Interval() != 100*time.Millisecond {
		t.Errorf("inline interval after exit = %v, want 100ms", p.Interval())
	}
	if !fs.Closed() {
		t.Error("session should be closed")
	}
	if p.Fullscreen() != nil {
		t.Error("Fullscreen() should be nil after exit")
	}
}

// TestPlayerCloseAbandonsPreload 卸载时放弃进行中的预加载
func TestPlayerCloseAbandonsPreload(t *testing.T) {
	started := make(chan struct{}, 16)
	stuck := frames.FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	})

	p := New(testSequence(t, 61), stuck, Options{BatchSize: 5})
	p.Start(context.Background())
	<-started

	p.Close()
	if p.State() != StateIdle {
		t.Errorf("state after Close = %v, want idle", p.State())
	}

	select {
	case <-p.Preloaded():
		t.Error("Preloaded() should not close after Close()")
	case <-time.After(50 * time.Millisecond):
	}
	if err := p.Play(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Play() after Close error = %v, want ErrNotReady", err)
	}
}

// TestPlayerFrameFallback 未加载或失败的帧仍返回名义 URL
func TestPlayerFrameFallback(t *testing.T) {
	p := New(testSequence(t, 61), instantFetcher, Options{})
	e := p.Frame(7)
	if e.URL != testSequence(t, 61).URL(7) {
		t.Errorf("Frame(7).URL = %q", e.URL)
	}
	if e.OK() {
		t.Error("unloaded frame should not be OK")
	}
}

// TestPlayerExitFullscreenVisibleFrame 退出时同步的是屏幕上最后可见的帧
func TestPlayerExitFullscreenVisibleFrame(t *testing.T) {
	p := readyPlayer(t, 61)
	p.Seek(10)
	fs, err := p.EnterFullscreen()
	if err != nil {
		t.Fatalf("EnterFullscreen() error: %v", err)
	}
	p.Update(16 * time.Millisecond)

	// 反向换帧尚未翻转时立即退出
	fs.StepBack()
	if fs.Current() != 9 || fs.VisibleFrame() != 10 {
		t.Fatalf("logical=%d visible=%d, want 9 and 10", fs.Current(), fs.VisibleFrame())
	}
	if last := p.ExitFullscreen(); last != 10 {
		t.Errorf("ExitFullscreen() = %d, want visible frame 10", last)
	}
	if p.Current() != 10 {
		t.Errorf("inline frame = %d, want 10", p.Current())
	}
}
