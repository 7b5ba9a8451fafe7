package config

// 布局配置常量
// 逻辑屏幕为竖屏手机尺寸，桌面窗口由 Ebitengine 自动缩放

const (
	// ScreenWidth 逻辑屏幕宽度
	ScreenWidth = 390
	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 844

	// CardMarginX 内联播放卡片左右边距
	CardMarginX = 16.0
	// CardTop 内联播放卡片顶部
	CardTop = 96.0

	// FrameAspect 预报图宽高比（原图约 4:5）
	FrameAspect = 0.8

	// ControlButtonSize 播放控制按钮边长
	ControlButtonSize = 56.0
	// SmallButtonSize 次要按钮边长（展开、关闭、箭头）
	SmallButtonSize = 44.0

	// ScrubBarHeight 拖动条高度
	ScrubBarHeight = 8.0
	// ScrubBarTouchPadding 拖动条触摸区域上下扩展
	ScrubBarTouchPadding = 14.0

	// SegmentHeight 速率分段控件高度
	SegmentHeight = 36.0

	// HUDHeaderHeight 全屏顶部栏高度
	HUDHeaderHeight = 72.0
	// HUDFooterHeight 全屏底部控件区高度
	HUDFooterHeight = 150.0

	// ListRowHeight 数据集列表行高
	ListRowHeight = 72.0
)

// FontSizes 字体大小
const (
	FontSizeTitle  = 22.0
	FontSizeBody   = 16.0
	FontSizeSmall  = 13.0
	FontSizeButton = 15.0
)
