//go:build mobile

package utils

// IsMobile 移动端构建恒为 true（无窗口全屏切换，输入以触摸为主）
func IsMobile() bool {
	return true
}
