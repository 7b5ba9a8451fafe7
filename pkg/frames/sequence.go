// Package frames 提供预报动画帧序列的寻址、获取与预加载
//
// 帧是 1 起始的整数索引，按命名约定映射到远程 PNG 地址
// （如 https://marejadas.uv.cl/images/SAM/pacifico/Campo{index}.png）。
// 序列是环形的：N 之后是 1，1 之前是 N。
// 静态图集（区域预报图、折页）用 NewImageList 按固定地址列表寻址。
package frames

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IndexPlaceholder 是 URL 模板中的帧索引占位符
const IndexPlaceholder = "{index}"

var (
	// ErrInvalidTemplate 表示 URL 模板缺少 {index} 占位符
	ErrInvalidTemplate = errors.New("frame url template must contain " + IndexPlaceholder)
	// ErrEmptyURL 图集中有空地址
	ErrEmptyURL = errors.New("image url must not be empty")
)

// Direction 帧前进方向
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// String 返回方向名称（用于日志）
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Sequence 描述一个固定长度的环形帧序列
type Sequence struct {
	count    int
	template string
	urls     []string // 非空时按列表寻址
}

// NewSequence 创建帧序列
//
// 参数：
//   - count: 帧总数 N，必须 >= 1
//   - template: 包含 {index} 的 URL 模板
func NewSequence(count int, template string) (Sequence, error) {
	if count < 1 {
		return Sequence{}, fmt.Errorf("frame count must be >= 1, got %d", count)
	}
	if !strings.Contains(template, IndexPlaceholder) {
		return Sequence{}, fmt.Errorf("%w: %q", ErrInvalidTemplate, template)
	}
	return Sequence{count: count, template: template}, nil
}

// NewImageList 创建按地址列表寻址的序列，第 i 帧对应 urls[i-1]
func NewImageList(urls []string) (Sequence, error) {
	if len(urls) < 1 {
		return Sequence{}, fmt.Errorf("frame count must be >= 1, got 0")
	}
	for i, u := range urls {
		if strings.TrimSpace(u) == "" {
			return Sequence{}, fmt.Errorf("%w: image %d", ErrEmptyURL, i+1)
		}
	}
	return Sequence{count: len(urls), urls: append([]string(nil), urls...)}, nil
}

// Count 返回帧总数 N
func (s Sequence) Count() int {
	return s.count
}

// Template 返回 URL 模板，地址列表序列返回空串
func (s Sequence) Template() string {
	return s.template
}

// URL 返回第 i 帧的远程地址
// i 不做环形归一化，调用方应保证 i 在 [1, N] 内
func (s Sequence) URL(i int) string {
	if s.urls != nil {
		return s.urls[i-1]
	}
	return strings.ReplaceAll(s.template, IndexPlaceholder, strconv.Itoa(i))
}

// Contains 判断 i 是否是合法帧索引
func (s Sequence) Contains(i int) bool {
	return i >= 1 && i <= s.count
}

// Clamp 将 i 限制到 [1, N]
func (s Sequence) Clamp(i int) int {
	if i < 1 {
		return 1
	}
	if i > s.count {
		return s.count
	}
	return i
}

// Next 返回 i 的下一帧，N 之后回到 1
func (s Sequence) Next(i int) int {
	if i >= s.count {
		return 1
	}
	return i + 1
}

// Prev 返回 i 的上一帧，1 之前回到 N
func (s Sequence) Prev(i int) int {
	if i <= 1 {
		return s.count
	}
	return i - 1
}

// Step 沿 dir 方向移动一帧
func (s Sequence) Step(i int, dir Direction) int {
	if dir == Backward {
		return s.Prev(i)
	}
	return s.Next(i)
}
