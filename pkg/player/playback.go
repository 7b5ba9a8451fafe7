package player

import (
	"time"

	"github.com/decker502/marejadas/pkg/frames"
)

// Playback 是一个由游戏循环驱动的循环播放计时器
//
// 与浏览器的 setInterval 不同，这里没有后台计时器：
// 每个 tick 由 Tick(dt) 累加经过的时间，到达 interval 时前进一帧。
// 同一时刻只存在一个计时器，更换速率即重置 elapsed。
type Playback struct {
	seq      frames.Sequence
	current  int
	playing  bool
	interval time.Duration
	elapsed  time.Duration // 距上次前进（或计时器重启）经过的时间
}

// NewPlayback 创建暂停状态的播放计时器
func NewPlayback(seq frames.Sequence, start int, interval time.Duration) *Playback {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Playback{
		seq:      seq,
		current:  seq.Clamp(start),
		interval: interval,
	}
}

// Current 返回当前帧
func (pb *Playback) Current() int {
	return pb.current
}

// Playing 是否正在播放
func (pb *Playback) Playing() bool {
	return pb.playing
}

// Interval 返回每帧停留时间
func (pb *Playback) Interval() time.Duration {
	return pb.interval
}

// Play 启动计时器；已在播放时不重启
func (pb *Playback) Play() {
	if pb.playing {
		return
	}
	pb.playing = true
	pb.elapsed = 0
}

// Pause 停止计时器
func (pb *Playback) Pause() {
	pb.playing = false
	pb.elapsed = 0
}

// SetInterval 更换速率
// 播放中时计时器从此刻重新开始，新间隔只影响之后的前进
func (pb *Playback) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	pb.interval = interval
	pb.elapsed = 0
}

// Seek 手动跳到指定帧（不改变播放状态）
func (pb *Playback) Seek(frame int) int {
	pb.current = pb.seq.Clamp(frame)
	return pb.current
}

// Step 手动前进或后退一帧（不改变播放状态）
func (pb *Playback) Step(dir frames.Direction) int {
	pb.current = pb.seq.Step(pb.current, dir)
	return pb.current
}

// Tick 推进计时器，返回本次是否前进了一帧
//
// 每个 tick 最多前进一帧；如果一次 dt 超过两个间隔（如窗口被挂起），
// 积压的前进被丢弃而不是连续补帧。
func (pb *Playback) Tick(dt time.Duration) bool {
	if !pb.playing {
		return false
	}
	pb.elapsed += dt
	if pb.elapsed < pb.interval {
		return false
	}
	pb.elapsed -= pb.interval
	if pb.elapsed >= pb.interval {
		pb.elapsed = 0
	}
	pb.current = pb.seq.Next(pb.current)
	return true
}
