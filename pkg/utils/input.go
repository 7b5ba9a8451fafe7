// Package utils 提供输入、平台与缓动等通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState 存储当前帧的输入状态
// 用于统一处理鼠标和触摸输入
type InputState struct {
	// 是否有点击/触摸事件刚刚发生
	JustPressed bool
	// 是否刚刚释放
	JustReleased bool
	// 指针位置
	X, Y int
	// 是否按住（鼠标左键或任意触摸）
	Pressed bool
}

// 保存最后一次触摸位置（触摸释放时已读不到位置）
var lastTouchX, lastTouchY int

// GetInputState 获取当前帧的输入状态，每帧调用一次
// 同时支持鼠标和触摸，优先检测触摸
func GetInputState() InputState {
	state := InputState{}

	if touchIDs := inpututil.AppendJustPressedTouchIDs(nil); len(touchIDs) > 0 {
		state.JustPressed = true
		state.Pressed = true
		state.X, state.Y = ebiten.TouchPosition(touchIDs[0])
		lastTouchX, lastTouchY = state.X, state.Y
		return state
	}

	if touchIDs := ebiten.AppendTouchIDs(nil); len(touchIDs) > 0 {
		state.Pressed = true
		state.X, state.Y = ebiten.TouchPosition(touchIDs[0])
		lastTouchX, lastTouchY = state.X, state.Y
		return state
	}

	if released := inpututil.AppendJustReleasedTouchIDs(nil); len(released) > 0 {
		state.JustReleased = true
		state.X, state.Y = lastTouchX, lastTouchY
		return state
	}

	state.X, state.Y = ebiten.CursorPosition()
	state.JustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	state.JustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	state.Pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	return state
}

// ============================================================================
// 拖拽状态机 - 用于进度条拖动
// ============================================================================

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（释放）
	DragStateEnded
)

// DragInfo 拖拽信息
type DragInfo struct {
	State              DragState
	StartX, StartY     int
	CurrentX, CurrentY int
}

// DragTracker 根据每帧的 InputState 推进拖拽状态
// 与 ebiten 输入解耦，便于测试
type DragTracker struct {
	info DragInfo
}

// Update 推进一帧
func (d *DragTracker) Update(in InputState) {
	switch d.info.State {
	case DragStateNone, DragStateEnded:
		d.info = DragInfo{}
		if in.JustPressed {
			d.info = DragInfo{
				State:    DragStateStarted,
				StartX:   in.X,
				StartY:   in.Y,
				CurrentX: in.X,
				CurrentY: in.Y,
			}
		}

	case DragStateStarted, DragStateDragging:
		d.info.CurrentX, d.info.CurrentY = in.X, in.Y
		if in.JustReleased || !in.Pressed {
			d.info.State = DragStateEnded
		} else {
			d.info.State = DragStateDragging
		}
	}
}

// Reset 重置拖拽状态
func (d *DragTracker) Reset() {
	d.info = DragInfo{}
}

// Info 获取完整拖拽信息
func (d *DragTracker) Info() DragInfo {
	return d.info
}

// Active 是否处于按下或拖动中
func (d *DragTracker) Active() bool {
	return d.info.State == DragStateStarted || d.info.State == DragStateDragging
}

// JustEnded 是否刚结束拖拽（本帧）
func (d *DragTracker) JustEnded() bool {
	return d.info.State == DragStateEnded
}
