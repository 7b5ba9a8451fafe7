// Package ui 提供播放器界面使用的矢量控件
//
// 控件不依赖图片资源，全部用 vector 绘制；交互通过每帧传入的
// utils.InputState 驱动，便于在测试中注入输入。
package ui

import (
	"image/color"
)

// disabledAlpha 禁用控件的绘制透明度
const disabledAlpha = 0.45

// State 控件交互状态
type State int

const (
	StateNormal State = iota
	StateHovered
	StatePressed
	StateDisabled
)

// Rect 屏幕坐标中的矩形
type Rect struct {
	X, Y, W, H float64
}

// Contains 点是否落在矩形内
func (r Rect) Contains(x, y int) bool {
	fx, fy := float64(x), float64(y)
	return fx >= r.X && fx <= r.X+r.W && fy >= r.Y && fy <= r.Y+r.H
}

// Inset 四边各向内收缩 d（d 为负时向外扩展）
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Center 返回中心点
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// 配色
var (
	ColorBackground = color.RGBA{R: 0xf3, G: 0xf6, B: 0xf9, A: 0xff}
	ColorCard       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ColorPrimary    = color.RGBA{R: 0x00, G: 0x5b, B: 0x96, A: 0xff}
	ColorPrimaryDim = color.RGBA{R: 0x9c, G: 0xbf, B: 0xd6, A: 0xff}
	ColorText       = color.RGBA{R: 0x1c, G: 0x25, B: 0x2e, A: 0xff}
	ColorTextMuted  = color.RGBA{R: 0x6b, G: 0x77, B: 0x83, A: 0xff}
	ColorTrack      = color.RGBA{R: 0xd5, G: 0xdd, B: 0xe4, A: 0xff}
	ColorWhite      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ColorScrim      = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x8c}
	ColorBlack      = color.RGBA{A: 0xff}
	ColorWarning    = color.RGBA{R: 0xc2, G: 0x5b, B: 0x12, A: 0xff}
)
