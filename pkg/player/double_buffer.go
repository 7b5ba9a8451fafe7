package player

import (
	"github.com/decker502/marejadas/pkg/frames"
)

// Slot 双缓冲中的一个图片槽
type Slot struct {
	Frame        int    // 槽中图片对应的帧
	AssignedTick uint64 // 最近一次设置 Frame 的 tick
	ShownTick    uint64 // 最近一次变为可见的 tick
}

// DoubleBuffer 全屏视图的双缓冲
//
// 两个槽 a、b 由 useB 选择哪个可见。每次前进时把已经提前装好的隐藏槽
// 翻为可见，再把刚被隐藏的槽指向下一次前进需要的帧。
// 不变式：
//   - 任一时刻恰好一个槽可见
//   - 完成前进后，隐藏槽保存当前方向上下一次前进要显示的帧
//   - 槽变为可见的 tick 严格晚于它被赋值的 tick
//
// 方向反转或跳帧时隐藏槽的帧不是所需的帧，此时重新指向目标帧并进入 pending，
// 在之后的 tick 上（图片已就绪）再翻转，期间旧帧保持可见。
type DoubleBuffer struct {
	seq   frames.Sequence
	ready func(frame int) bool

	a, b Slot
	useB bool // false: a 可见；true: b 可见

	dir     frames.Direction
	pending bool
	swaps   int
}

// NewDoubleBuffer 创建双缓冲，ready 为 nil 时认为所有帧都已就绪
func NewDoubleBuffer(seq frames.Sequence, ready func(frame int) bool) *DoubleBuffer {
	if ready == nil {
		ready = func(int) bool { return true }
	}
	return &DoubleBuffer{seq: seq, ready: ready, dir: frames.Forward}
}

// Seed 以 current 初始化：可见槽显示 current，隐藏槽预取下一帧
func (db *DoubleBuffer) Seed(current int, tick uint64) {
	current = db.seq.Clamp(current)
	db.useB = false
	db.a = Slot{Frame: current, AssignedTick: tick, ShownTick: tick}
	db.b = Slot{Frame: db.seq.Next(current), AssignedTick: tick}
	db.dir = frames.Forward
	db.pending = false
}

func (db *DoubleBuffer) visible() *Slot {
	if db.useB {
		return &db.b
	}
	return &db.a
}

func (db *DoubleBuffer) hidden() *Slot {
	if db.useB {
		return &db.a
	}
	return &db.b
}

// Visible 返回可见槽
func (db *DoubleBuffer) Visible() Slot {
	return *db.visible()
}

// Hidden 返回隐藏槽
func (db *DoubleBuffer) Hidden() Slot {
	return *db.hidden()
}

// Slot 返回 a 槽（b=false）或 b 槽（b=true），用于按固定顺序绘制
func (db *DoubleBuffer) Slot(b bool) Slot {
	if b {
		return db.b
	}
	return db.a
}

// VisibleFrame 返回当前显示的帧
func (db *DoubleBuffer) VisibleFrame() int {
	return db.visible().Frame
}

// SlotOpacity 返回 a、b 两个槽的不透明度（1 可见，0 隐藏）
func (db *DoubleBuffer) SlotOpacity() (a, b float32) {
	if db.useB {
		return 0, 1
	}
	return 1, 0
}

// Pending 是否有等待翻转的目标帧
func (db *DoubleBuffer) Pending() bool {
	return db.pending
}

// Swaps 返回已完成的翻转次数
func (db *DoubleBuffer) Swaps() int {
	return db.swaps
}

// Direction 返回最近一次前进的方向
func (db *DoubleBuffer) Direction() frames.Direction {
	return db.dir
}

// Advance 在播放状态变为 target 后调用
func (db *DoubleBuffer) Advance(target int, dir frames.Direction, tick uint64) {
	db.dir = dir
	h := db.hidden()
	if h.Frame == target && h.AssignedTick < tick && db.ready(target) {
		db.swap(tick)
		return
	}

	// 隐藏槽里不是需要的帧：重新指向并等待后续 tick
	if h.Frame != target {
		h.Frame = target
		h.AssignedTick = tick
	}
	db.pending = true
}

// Resolve 每个 tick 调用一次，完成 pending 的翻转
func (db *DoubleBuffer) Resolve(tick uint64) {
	if !db.pending {
		return
	}
	h := db.hidden()
	if h.AssignedTick < tick && db.ready(h.Frame) {
		db.swap(tick)
	}
}

// swap 翻转可见槽，并让新的隐藏槽预取下一帧
func (db *DoubleBuffer) swap(tick uint64) {
	db.useB = !db.useB
	v := db.visible()
	v.ShownTick = tick

	h := db.hidden()
	h.Frame = db.seq.Step(v.Frame, db.dir)
	h.AssignedTick = tick

	db.pending = false
	db.swaps++
}
