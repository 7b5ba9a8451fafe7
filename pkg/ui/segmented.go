package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/marejadas/pkg/utils"
)

// SegmentedControl 分段选择控件（速率 0.5x / 1x / 2x）
type SegmentedControl struct {
	Bounds   Rect
	Labels   []string
	Selected int
	Dark     bool
	Enabled  bool
	OnChange func(index int)

	pressed int
}

// NewSegmentedControl 创建分段控件
func NewSegmentedControl(bounds Rect, labels []string, selected int, onChange func(int)) *SegmentedControl {
	return &SegmentedControl{Bounds: bounds, Labels: labels, Selected: selected, Enabled: true, OnChange: onChange, pressed: -1}
}

// segment 返回第 i 段的区域
func (s *SegmentedControl) segment(i int) Rect {
	w := s.Bounds.W / float64(len(s.Labels))
	return Rect{X: s.Bounds.X + float64(i)*w, Y: s.Bounds.Y, W: w, H: s.Bounds.H}
}

// SegmentAt 返回坐标所在的段，不在控件内返回 -1
func (s *SegmentedControl) SegmentAt(x, y int) int {
	if len(s.Labels) == 0 || !s.Bounds.Contains(x, y) {
		return -1
	}
	for i := range s.Labels {
		if s.segment(i).Contains(x, y) {
			return i
		}
	}
	return len(s.Labels) - 1
}

// Update 处理一帧输入，返回是否消费了该输入
func (s *SegmentedControl) Update(in utils.InputState) bool {
	if !s.Enabled {
		s.pressed = -1
		return false
	}
	at := s.SegmentAt(in.X, in.Y)
	switch {
	case in.JustPressed && at >= 0:
		s.pressed = at
		return true
	case in.JustReleased && s.pressed >= 0:
		hit := at == s.pressed
		if hit && at != s.Selected {
			s.Selected = at
			if s.OnChange != nil {
				s.OnChange(at)
			}
		}
		s.pressed = -1
		return hit
	}
	return false
}

// Draw 绘制控件
func (s *SegmentedControl) Draw(dst *ebiten.Image, face *text.GoTextFace, alpha float64) {
	if alpha <= 0 || len(s.Labels) == 0 {
		return
	}
	if !s.Enabled {
		alpha *= disabledAlpha
	}
	track, selected, fg, fgSelected := ColorTrack, ColorPrimary, ColorText, ColorWhite
	if s.Dark {
		track, selected, fg, fgSelected = ColorScrim, ColorWhite, ColorWhite, ColorBlack
	}
	FillRoundRect(dst, s.Bounds, s.Bounds.H/2, WithAlpha(track, alpha))

	for i, label := range s.Labels {
		r := s.segment(i)
		clr := fg
		if i == s.Selected {
			FillRoundRect(dst, r.Inset(3, 3), (r.H-6)/2, WithAlpha(selected, alpha))
			clr = fgSelected
		}
		cx, cy := r.Center()
		DrawText(dst, label, face, cx, cy, WithAlpha(clr, alpha), text.AlignCenter)
	}
}
