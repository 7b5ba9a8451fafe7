package player

import (
	"time"

	"github.com/decker502/marejadas/pkg/frames"
)

// FullscreenSession 全屏播放会话
//
// 与内联播放器相互独立：有自己的计时器、双缓冲和 HUD。
// 进入时以内联播放器的当前帧为起点且处于暂停状态，
// 退出时由 Player.ExitFullscreen 把最后显示的帧同步回内联视图。
type FullscreenSession struct {
	seq      frames.Sequence
	playback *Playback
	buffer   *DoubleBuffer
	hud      *HUD
	tick     uint64
	closed   bool
}

// NewFullscreenSession 创建全屏会话
//
// 参数：
//   - seq: 帧序列
//   - start: 起始帧（内联播放器的当前帧）
//   - interval: 当前速率
//   - hudDelay: HUD 自动隐藏延时
//   - ready: 判断帧图片是否就绪，nil 表示总是就绪
func NewFullscreenSession(seq frames.Sequence, start int, interval, hudDelay time.Duration, ready func(int) bool) *FullscreenSession {
	fs := &FullscreenSession{
		seq:      seq,
		playback: NewPlayback(seq, start, interval),
		buffer:   NewDoubleBuffer(seq, ready),
		hud:      NewHUD(hudDelay),
	}
	fs.buffer.Seed(fs.playback.Current(), fs.tick)
	return fs
}

// Current 返回全屏播放的逻辑当前帧
func (fs *FullscreenSession) Current() int {
	return fs.playback.Current()
}

// VisibleFrame 返回双缓冲中实际可见的帧
func (fs *FullscreenSession) VisibleFrame() int {
	return fs.buffer.VisibleFrame()
}

// Buffer 返回双缓冲（用于绘制两个槽）
func (fs *FullscreenSession) Buffer() *DoubleBuffer {
	return fs.buffer
}

// HUD 返回控件层状态
func (fs *FullscreenSession) HUD() *HUD {
	return fs.hud
}

// Playing 是否正在播放
func (fs *FullscreenSession) Playing() bool {
	return fs.playback.Playing()
}

// Interval 返回当前速率
func (fs *FullscreenSession) Interval() time.Duration {
	return fs.playback.Interval()
}

// Closed 是否已关闭
func (fs *FullscreenSession) Closed() bool {
	return fs.closed
}

// TogglePlay 播放/暂停按钮
func (fs *FullscreenSession) TogglePlay() {
	if fs.closed {
		return
	}
	if fs.playback.Playing() {
		fs.playback.Pause()
	} else {
		fs.playback.Play()
	}
	fs.hud.Touch()
}

// StepForward 手动下一帧，会先暂停播放
func (fs *FullscreenSession) StepForward() int {
	return fs.step(frames.Forward)
}

// StepBack 手动上一帧，会先暂停播放
func (fs *FullscreenSession) StepBack() int {
	return fs.step(frames.Backward)
}

func (fs *FullscreenSession) step(dir frames.Direction) int {
	if fs.closed {
		return fs.playback.Current()
	}
	fs.playback.Pause()
	target := fs.playback.Step(dir)
	// 输入在两次 Update 之间到达，属于下一个 tick；
	// 重新指向的隐藏槽至少经过一次绘制后才翻转
	fs.buffer.Advance(target, dir, fs.tick+1)
	fs.hud.Touch()
	return target
}

// SetRate 更换速率
func (fs *FullscreenSession) SetRate(interval time.Duration) {
	if fs.closed {
		return
	}
	fs.playback.SetInterval(interval)
	fs.hud.Touch()
}

// TapBackground 点击控件以外的区域切换 HUD
func (fs *FullscreenSession) TapBackground() {
	if fs.closed {
		return
	}
	fs.hud.Toggle()
}

// Update 每个 tick 调用一次
func (fs *FullscreenSession) Update(dt time.Duration) {
	if fs.closed {
		return
	}
	fs.tick++
	fs.hud.Update(dt)
	fs.buffer.Resolve(fs.tick)
	if fs.playback.Tick(dt) {
		fs.buffer.Advance(fs.playback.Current(), frames.Forward, fs.tick)
	}
}

// close 停止计时器，返回最后显示的帧（未完成的翻转不算）
func (fs *FullscreenSession) close() int {
	fs.playback.Pause()
	fs.hud.Hide()
	fs.closed = true
	return fs.buffer.VisibleFrame()
}
