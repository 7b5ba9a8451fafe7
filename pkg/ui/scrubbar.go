package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/marejadas/pkg/utils"
)

// ScrubBar 帧进度条，支持点击和拖动定位到 1..Count 中的某一帧
//
// 触摸区域比可见轨道高，方便手指操作。
type ScrubBar struct {
	Bounds       Rect // 可见轨道
	TouchPadding float64
	Count        int
	Value        int
	Dark         bool
	Enabled      bool
	OnSeek       func(frame int)

	drag utils.DragTracker
}

// NewScrubBar 创建进度条
func NewScrubBar(bounds Rect, padding float64, count int, onSeek func(int)) *ScrubBar {
	return &ScrubBar{Bounds: bounds, TouchPadding: padding, Count: count, Value: 1, Enabled: true, OnSeek: onSeek}
}

// hitRect 返回触摸区域
func (s *ScrubBar) hitRect() Rect {
	return s.Bounds.Inset(0, -s.TouchPadding)
}

// FrameAt 把横坐标映射到帧号（两端截断）
func (s *ScrubBar) FrameAt(x int) int {
	if s.Count <= 1 || s.Bounds.W <= 0 {
		return 1
	}
	t := (float64(x) - s.Bounds.X) / s.Bounds.W
	t = math.Max(0, math.Min(1, t))
	return 1 + int(math.Round(t*float64(s.Count-1)))
}

// KnobX 返回当前帧对应的横坐标
func (s *ScrubBar) KnobX() float64 {
	if s.Count <= 1 {
		return s.Bounds.X
	}
	return s.Bounds.X + s.Bounds.W*float64(s.Value-1)/float64(s.Count-1)
}

// Dragging 是否正在拖动
func (s *ScrubBar) Dragging() bool {
	return s.drag.Active()
}

// Update 处理一帧输入，返回是否消费了该输入
//
// 按下时立即定位，拖动过程中帧号变化时才回调。
func (s *ScrubBar) Update(in utils.InputState) bool {
	if !s.Enabled {
		s.drag.Reset()
		return false
	}
	if !s.drag.Active() && !(in.JustPressed && s.hitRect().Contains(in.X, in.Y)) {
		return false
	}
	s.drag.Update(in)
	info := s.drag.Info()
	if info.State == utils.DragStateNone {
		return false
	}

	frame := s.FrameAt(info.CurrentX)
	if frame != s.Value || info.State == utils.DragStateStarted {
		s.Value = frame
		if s.OnSeek != nil {
			s.OnSeek(frame)
		}
	}
	if s.drag.JustEnded() {
		s.drag.Reset()
	}
	return true
}

// Draw 绘制轨道、已播放部分和滑块
func (s *ScrubBar) Draw(dst *ebiten.Image, alpha float64) {
	if alpha <= 0 {
		return
	}
	if !s.Enabled {
		alpha *= disabledAlpha
	}
	track, fill, knob := ColorTrack, ColorPrimary, ColorPrimary
	if s.Dark {
		track, fill, knob = ColorTextMuted, ColorWhite, ColorWhite
	}
	r := s.Bounds
	FillRoundRect(dst, r, r.H/2, WithAlpha(track, alpha))
	kx := s.KnobX()
	FillRoundRect(dst, Rect{X: r.X, Y: r.Y, W: kx - r.X, H: r.H}, r.H/2, WithAlpha(fill, alpha))

	radius := float32(r.H)
	if s.Dragging() {
		radius *= 1.4
	}
	vector.DrawFilledCircle(dst, float32(kx), float32(r.Y+r.H/2), radius, WithAlpha(knob, alpha), true)
}
