// Package player 实现预报动画的帧序列播放器
//
// 播放器持有帧缓存、播放计时器和可选的全屏会话，状态机如下：
//
//	Idle → Preloading → Ready → Playing ⇄ Paused
//	                      ↘ Fullscreen ↙（任意就绪状态均可进入，退出后回到 Paused/Ready）
//
// 所有方法都应在游戏循环所在的 goroutine 上调用；只有预加载在后台 goroutine
// 中运行，其进度通过互斥锁发布。
package player

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/decker502/marejadas/pkg/frames"
)

// ErrNotReady 预加载完成前不能播放或进入全屏
var ErrNotReady = errors.New("player: frames are still preloading")

// State 播放器状态
type State int

const (
	StateIdle State = iota
	StatePreloading
	StateReady
	StatePlaying
	StatePaused
	StateFullscreen
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreloading:
		return "preloading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFullscreen:
		return "fullscreen"
	default:
		return "unknown"
	}
}

// Options 播放器参数
type Options struct {
	BatchSize    int
	FrameTimeout time.Duration
	Interval     time.Duration
	HUDHideDelay time.Duration
	Logger       *slog.Logger
}

// Player 帧序列播放器（内联视图）
type Player struct {
	id      string
	seq     frames.Sequence
	fetcher frames.Fetcher
	cache   *frames.Cache
	opts    Options
	logger  *slog.Logger

	playback  *Playback
	hasPlayed bool

	fullscreen *FullscreenSession

	// 以下字段由预加载 goroutine 写入
	mu        sync.Mutex
	progress  frames.Progress
	preloaded bool
	done      chan struct{}

	started bool
	closed  bool
	cancel  context.CancelFunc
}

// New 创建处于 Idle 状态的播放器
func New(seq frames.Sequence, fetcher frames.Fetcher, opts Options) *Player {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.HUDHideDelay <= 0 {
		opts.HUDHideDelay = DefaultHUDHideDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()

	return &Player{
		id:       id,
		seq:      seq,
		fetcher:  fetcher,
		cache:    frames.NewCache(),
		opts:     opts,
		logger:   logger.With("component", "Player", "player_id", id[:8]),
		playback: NewPlayback(seq, 1, opts.Interval),
		progress: frames.Progress{Total: seq.Count(), Batches: 0},
		done:     make(chan struct{}),
	}
}

// ID 返回播放器实例 ID
func (p *Player) ID() string {
	return p.id
}

// Sequence 返回帧序列
func (p *Player) Sequence() frames.Sequence {
	return p.seq
}

// Cache 返回预加载缓存
func (p *Player) Cache() *frames.Cache {
	return p.cache
}

// Start 挂载播放器并在后台开始预加载
func (p *Player) Start(ctx context.Context) {
	if p.started || p.closed {
		return
	}
	p.started = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	preloader := frames.NewPreloader(p.seq, p.fetcher, p.cache, frames.PreloadOptions{
		BatchSize:    p.opts.BatchSize,
		FrameTimeout: p.opts.FrameTimeout,
		Logger:       p.logger,
		OnProgress: func(pr frames.Progress) {
			p.mu.Lock()
			p.progress = pr
			p.mu.Unlock()
		},
	})

	p.mu.Lock()
	p.progress.Batches = preloader.Batches()
	p.mu.Unlock()

	p.logger.Info("player mounted", "frames", p.seq.Count(), "batches", preloader.Batches())

	go func() {
		err := preloader.Run(ctx)
		if err != nil {
			// 卸载时放弃，结果直接丢弃
			p.logger.Debug("preload stopped", "err", err)
			return
		}
		p.mu.Lock()
		p.preloaded = true
		p.mu.Unlock()
		close(p.done)
	}()
}

// Preloaded 返回一个在预加载全部完成后关闭的 channel
func (p *Player) Preloaded() <-chan struct{} {
	return p.done
}

// Progress 返回最近一次上报的预加载进度
func (p *Player) Progress() frames.Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Player) isPreloaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preloaded
}

// State 返回当前状态
func (p *Player) State() State {
	switch {
	case !p.started || p.closed:
		return StateIdle
	case p.fullscreen != nil:
		return StateFullscreen
	case !p.isPreloaded():
		return StatePreloading
	case p.playback.Playing():
		return StatePlaying
	case p.hasPlayed:
		return StatePaused
	default:
		return StateReady
	}
}

// Current 返回内联视图的当前帧
func (p *Player) Current() int {
	return p.playback.Current()
}

// Playing 内联视图是否在播放
func (p *Player) Playing() bool {
	return p.playback.Playing()
}

// Interval 返回当前速率
func (p *Player) Interval() time.Duration {
	return p.playback.Interval()
}

// Frame 返回第 i 帧的缓存记录；未加载时返回只含名义 URL 的记录
func (p *Player) Frame(i int) frames.Entry {
	if e, ok := p.cache.Get(i); ok {
		return e
	}
	return frames.Entry{Index: i, URL: p.seq.URL(i)}
}

// Play 开始循环播放
func (p *Player) Play() error {
	if err := p.checkInline(); err != nil {
		return err
	}
	p.playback.Play()
	p.hasPlayed = true
	p.logger.Debug("play", "frame", p.playback.Current(), "interval", p.playback.Interval())
	return nil
}

// Pause 暂停
func (p *Player) Pause() {
	if p.playback.Playing() {
		p.logger.Debug("pause", "frame", p.playback.Current())
	}
	p.playback.Pause()
}

// TogglePlay 播放/暂停切换
func (p *Player) TogglePlay() error {
	if p.playback.Playing() {
		p.Pause()
		return nil
	}
	return p.Play()
}

// StepForward 手动下一帧；正在播放时先暂停
func (p *Player) StepForward() int {
	p.Pause()
	return p.playback.Step(frames.Forward)
}

// StepBack 手动上一帧；正在播放时先暂停
func (p *Player) StepBack() int {
	p.Pause()
	return p.playback.Step(frames.Backward)
}

// Seek 拖动进度条跳到指定帧（超出范围时截断）；正在播放时先暂停
func (p *Player) Seek(frame int) int {
	p.Pause()
	return p.playback.Seek(frame)
}

// SetRate 更换速率，播放中时替换计时器
func (p *Player) SetRate(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.playback.SetInterval(interval)
	p.logger.Debug("rate changed", "interval", interval, "playing", p.playback.Playing())
}

// EnterFullscreen 打开全屏会话，内联播放暂停
func (p *Player) EnterFullscreen() (*FullscreenSession, error) {
	if p.fullscreen != nil {
		return p.fullscreen, nil
	}
	if err := p.checkInline(); err != nil {
		return nil, err
	}
	p.Pause()

	p.fullscreen = NewFullscreenSession(p.seq, p.playback.Current(), p.playback.Interval(), p.opts.HUDHideDelay, p.cache.Settled)
	p.logger.Info("enter fullscreen", "frame", p.playback.Current())
	return p.fullscreen, nil
}

// Fullscreen 返回当前全屏会话，未打开时为 nil
func (p *Player) Fullscreen() *FullscreenSession {
	return p.fullscreen
}

// ExitFullscreen 关闭全屏会话，把最后可见的帧和速率同步回内联视图
func (p *Player) ExitFullscreen() int {
	if p.fullscreen == nil {
		return p.playback.Current()
	}
	interval := p.fullscreen.Interval()
	last := p.fullscreen.close()
	p.fullscreen = nil

	p.playback.Seek(last)
	p.playback.SetInterval(interval)
	p.logger.Info("exit fullscreen", "frame", last)
	return last
}

// Update 每个 tick 调用一次，dt 为经过的时间
func (p *Player) Update(dt time.Duration) {
	if p.closed {
		return
	}
	if p.fullscreen != nil {
		p.fullscreen.Update(dt)
		return
	}
	p.playback.Tick(dt)
}

// Close 卸载：停止计时器，放弃进行中的预加载
func (p *Player) Close() {
	if p.closed {
		return
	}
	if p.fullscreen != nil {
		p.fullscreen.close()
		p.fullscreen = nil
	}
	p.playback.Pause()
	if p.cancel != nil {
		p.cancel()
	}
	p.closed = true
	p.logger.Info("player unmounted")
}

func (p *Player) checkInline() error {
	if p.closed || !p.started || !p.isPreloaded() {
		return ErrNotReady
	}
	return nil
}
