package utils

import "math"

// Easing Functions (缓动函数)
//
// 所有函数接受一个进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 参考：https://easings.net/

// EaseOutQuad 二次方缓出
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Fader 不透明度渐变（HUD 淡入淡出）
//
// SetTarget 之后每帧 Update，Alpha 在 duration 内从当前值缓动到目标值。
type Fader struct {
	from, to float64
	elapsed  float64
	duration float64
	alpha    float64
}

// NewFader 创建初始不透明度为 alpha 的渐变器，duration 以秒为单位
func NewFader(alpha, duration float64) *Fader {
	return &Fader{from: alpha, to: alpha, alpha: alpha, duration: duration, elapsed: duration}
}

// SetTarget 设置目标不透明度，目标未变时不重新开始
func (f *Fader) SetTarget(target float64) {
	if target == f.to {
		return
	}
	f.from = f.alpha
	f.to = target
	f.elapsed = 0
}

// Update 推进 dt 秒
func (f *Fader) Update(dt float64) {
	if f.elapsed >= f.duration || f.duration <= 0 {
		f.alpha = f.to
		return
	}
	f.elapsed = math.Min(f.elapsed+dt, f.duration)
	f.alpha = Lerp(f.from, f.to, EaseOutQuad(f.elapsed/f.duration))
}

// Alpha 返回当前不透明度
func (f *Fader) Alpha() float64 {
	return f.alpha
}

// Done 渐变是否结束
func (f *Fader) Done() bool {
	return f.alpha == f.to
}
