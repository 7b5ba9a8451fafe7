package player

import "time"

// DefaultHUDHideDelay 无操作多久后隐藏 HUD
const DefaultHUDHideDelay = 3 * time.Second

// HUD 全屏控件层的显示状态
type HUD struct {
	visible   bool
	delay     time.Duration
	remaining time.Duration
}

// NewHUD 创建 HUD，进入全屏时默认显示并开始倒计时
func NewHUD(delay time.Duration) *HUD {
	if delay <= 0 {
		delay = DefaultHUDHideDelay
	}
	h := &HUD{delay: delay}
	h.Show()
	return h
}

// Visible 是否可见
func (h *HUD) Visible() bool {
	return h.visible
}

// Remaining 距自动隐藏的剩余时间，隐藏时为 0
func (h *HUD) Remaining() time.Duration {
	return h.remaining
}

// Show 显示并重新开始倒计时
func (h *HUD) Show() {
	h.visible = true
	h.remaining = h.delay
}

// Touch 任意交互都会重置倒计时
func (h *HUD) Touch() {
	h.Show()
}

// Hide 立即隐藏并取消倒计时
func (h *HUD) Hide() {
	h.visible = false
	h.remaining = 0
}

// Toggle 点击背景时切换
func (h *HUD) Toggle() {
	if h.visible {
		h.Hide()
	} else {
		h.Show()
	}
}

// Update 推进自动隐藏计时器
func (h *HUD) Update(dt time.Duration) {
	if !h.visible {
		return
	}
	h.remaining -= dt
	if h.remaining <= 0 {
		h.Hide()
	}
}
