package game

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/marejadas/pkg/frames"
)

// FontStyle 字重
type FontStyle int

const (
	FontRegular FontStyle = iota
	FontBold
)

// ResourceManager is responsible for centralized management of UI resources.
// It caches font faces and the GPU copies of preloaded forecast frames,
// so that each decoded frame is uploaded only once.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. It must only be used from the
// game loop goroutine; the preloader hands decoded images over through
// frames.Cache, and conversion to *ebiten.Image happens here lazily.
type ResourceManager struct {
	fontSources   map[FontStyle]*text.GoTextFaceSource
	fontFaceCache map[string]*text.GoTextFace  // "style:size" -> face
	frameCache    map[string]*ebiten.Image     // frame URL -> GPU image
	placeholder   *ebiten.Image
	logger        *slog.Logger
}

// NewResourceManager creates a ResourceManager and parses the embedded Go fonts.
func NewResourceManager(logger *slog.Logger) (*ResourceManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rm := &ResourceManager{
		fontSources:   make(map[FontStyle]*text.GoTextFaceSource),
		fontFaceCache: make(map[string]*text.GoTextFace),
		frameCache:    make(map[string]*ebiten.Image),
		logger:        logger.With("component", "resources"),
	}

	for style, ttf := range map[FontStyle][]byte{FontRegular: goregular.TTF, FontBold: gobold.TTF} {
		source, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
		if err != nil {
			return nil, fmt.Errorf("failed to create font source: %w", err)
		}
		rm.fontSources[style] = source
	}
	return rm, nil
}

// Font returns a cached text face of the given style and size.
func (rm *ResourceManager) Font(style FontStyle, size float64) *text.GoTextFace {
	cacheKey := fmt.Sprintf("%d:%.1f", style, size)
	if face, ok := rm.fontFaceCache[cacheKey]; ok {
		return face
	}
	source, ok := rm.fontSources[style]
	if !ok {
		source = rm.fontSources[FontRegular]
	}
	face := &text.GoTextFace{
		Source:    source,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}
	rm.fontFaceCache[cacheKey] = face
	return face
}

// FrameImage 返回帧的 GPU 图片
//
// 返回 false 表示该帧加载失败或尚未加载，调用方应绘制占位图。
func (rm *ResourceManager) FrameImage(e frames.Entry) (*ebiten.Image, bool) {
	if !e.OK() {
		return nil, false
	}
	if img, ok := rm.frameCache[e.URL]; ok {
		return img, true
	}
	img := ebiten.NewImageFromImage(e.Image)
	rm.frameCache[e.URL] = img
	rm.logger.Debug("frame uploaded", "frame", e.Index, "w", img.Bounds().Dx(), "h", img.Bounds().Dy())
	return img, true
}

// FrameCount 返回已上传的帧数
func (rm *ResourceManager) FrameCount() int {
	return len(rm.frameCache)
}

// ReleaseFrames 释放所有帧图片（切换数据集或卸载播放器时调用）
func (rm *ResourceManager) ReleaseFrames() {
	for url, img := range rm.frameCache {
		img.Deallocate()
		delete(rm.frameCache, url)
	}
}

// Placeholder 返回 1x1 的占位图，绘制时缩放到帧区域
func (rm *ResourceManager) Placeholder() *ebiten.Image {
	if rm.placeholder == nil {
		rm.placeholder = ebiten.NewImage(1, 1)
		rm.placeholder.Fill(color.RGBA{R: 0x22, G: 0x2a, B: 0x33, A: 0xff})
	}
	return rm.placeholder
}
