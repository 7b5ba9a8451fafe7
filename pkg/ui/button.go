package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/marejadas/pkg/utils"
)

// Icon 按钮图标
type Icon int

const (
	IconNone Icon = iota
	IconPlay
	IconPause
	IconPrev
	IconNext
	IconExpand
	IconClose
)

// Button 可点击按钮
//
// 按下和释放都落在按钮内才算一次点击，移出后松开不触发。
type Button struct {
	Bounds  Rect
	Label   string
	Icon    Icon
	Enabled bool
	// Round 为 true 时绘制成圆形按钮
	Round bool
	// Dark 在黑色背景上使用（全屏 HUD）
	Dark bool

	state   State
	armed   bool
	OnClick func()
}

// NewButton 创建启用状态的按钮
func NewButton(bounds Rect, icon Icon, label string, onClick func()) *Button {
	return &Button{Bounds: bounds, Icon: icon, Label: label, Enabled: true, OnClick: onClick}
}

// State 返回当前交互状态
func (b *Button) State() State {
	return b.state
}

// Update 处理一帧输入，返回是否消费了该输入（按下或点击落在按钮内）
func (b *Button) Update(in utils.InputState) bool {
	if !b.Enabled {
		b.state = StateDisabled
		b.armed = false
		return false
	}

	inside := b.Bounds.Contains(in.X, in.Y)
	consumed := false

	switch {
	case in.JustPressed && inside:
		b.armed = true
		consumed = true
	case in.JustReleased:
		if b.armed && inside {
			consumed = true
			if b.OnClick != nil {
				b.OnClick()
			}
		}
		b.armed = false
	}

	switch {
	case b.armed && inside:
		b.state = StatePressed
	case inside:
		b.state = StateHovered
	default:
		b.state = StateNormal
	}
	return consumed
}

// Draw 绘制按钮
func (b *Button) Draw(dst *ebiten.Image, face *text.GoTextFace, alpha float64) {
	if alpha <= 0 {
		return
	}
	bg, fg := b.colors()
	bg, fg = WithAlpha(bg, alpha), WithAlpha(fg, alpha)

	if b.Round {
		cx, cy := b.Bounds.Center()
		FillRoundRect(dst, Rect{X: cx - b.Bounds.W/2, Y: cy - b.Bounds.H/2, W: b.Bounds.W, H: b.Bounds.H}, b.Bounds.W/2, bg)
	} else {
		FillRoundRect(dst, b.Bounds, 10, bg)
	}

	if b.Icon != IconNone {
		drawIcon(dst, b.Icon, b.Bounds.Inset(b.Bounds.W*0.3, b.Bounds.H*0.3), fg)
		return
	}
	cx, cy := b.Bounds.Center()
	DrawText(dst, b.Label, face, cx, cy, fg, text.AlignCenter)
}

func (b *Button) colors() (bg, fg color.Color) {
	switch {
	case b.state == StateDisabled || !b.Enabled:
		if b.Dark {
			return color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xb0}, ColorTextMuted
		}
		return ColorTrack, ColorTextMuted
	case b.Dark:
		if b.state == StatePressed {
			return color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xd0}, ColorWhite
		}
		return color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xb0}, ColorWhite
	case b.state == StatePressed:
		return ColorPrimaryDim, ColorWhite
	default:
		return ColorPrimary, ColorWhite
	}
}

// drawIcon 在 r 内绘制图标
func drawIcon(dst *ebiten.Image, icon Icon, r Rect, clr color.Color) {
	switch icon {
	case IconPlay:
		FillTriangle(dst, r.X+r.W*0.15, r.Y, r.X+r.W*0.15, r.Y+r.H, r.X+r.W, r.Y+r.H/2, clr)
	case IconPause:
		bar := r.W * 0.32
		FillRect(dst, Rect{X: r.X + r.W*0.08, Y: r.Y, W: bar, H: r.H}, clr)
		FillRect(dst, Rect{X: r.X + r.W*0.92 - bar, Y: r.Y, W: bar, H: r.H}, clr)
	case IconPrev:
		FillRect(dst, Rect{X: r.X, Y: r.Y, W: r.W * 0.16, H: r.H}, clr)
		FillTriangle(dst, r.X+r.W, r.Y, r.X+r.W, r.Y+r.H, r.X+r.W*0.2, r.Y+r.H/2, clr)
	case IconNext:
		FillRect(dst, Rect{X: r.X + r.W*0.84, Y: r.Y, W: r.W * 0.16, H: r.H}, clr)
		FillTriangle(dst, r.X, r.Y, r.X, r.Y+r.H, r.X+r.W*0.8, r.Y+r.H/2, clr)
	case IconExpand:
		t := r.W * 0.14
		l := r.W * 0.45
		// 四个角
		FillRect(dst, Rect{X: r.X, Y: r.Y, W: l, H: t}, clr)
		FillRect(dst, Rect{X: r.X, Y: r.Y, W: t, H: l}, clr)
		FillRect(dst, Rect{X: r.X + r.W - l, Y: r.Y, W: l, H: t}, clr)
		FillRect(dst, Rect{X: r.X + r.W - t, Y: r.Y, W: t, H: l}, clr)
		FillRect(dst, Rect{X: r.X, Y: r.Y + r.H - t, W: l, H: t}, clr)
		FillRect(dst, Rect{X: r.X, Y: r.Y + r.H - l, W: t, H: l}, clr)
		FillRect(dst, Rect{X: r.X + r.W - l, Y: r.Y + r.H - t, W: l, H: t}, clr)
		FillRect(dst, Rect{X: r.X + r.W - t, Y: r.Y + r.H - l, W: t, H: l}, clr)
	case IconClose:
		strokeX(dst, r, clr)
	}
}

// strokeX 绘制关闭图标
func strokeX(dst *ebiten.Image, r Rect, clr color.Color) {
	w := float32(r.W * 0.14)
	vector.StrokeLine(dst, float32(r.X), float32(r.Y), float32(r.X+r.W), float32(r.Y+r.H), w, clr, true)
	vector.StrokeLine(dst, float32(r.X+r.W), float32(r.Y), float32(r.X), float32(r.Y+r.H), w, clr, true)
}
