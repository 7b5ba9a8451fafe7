package scenes

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/marejadas/pkg/frames"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/ui"
)

// UnavailableLabel 帧加载失败时的占位文字
const UnavailableLabel = "Frame no disponible"

// drawFrame 绘制一帧；加载失败时绘制占位图和帧号
func drawFrame(screen *ebiten.Image, rm *game.ResourceManager, e frames.Entry, r ui.Rect, alpha float32, face *text.GoTextFace) {
	if alpha <= 0 {
		return
	}
	if img, ok := rm.FrameImage(e); ok {
		ui.DrawImageFit(screen, img, r, alpha)
		return
	}

	ui.DrawImageFill(screen, rm.Placeholder(), r, alpha)
	cx, cy := r.Center()
	muted := ui.WithAlpha(ui.ColorTextMuted, float64(alpha))
	ui.DrawText(screen, UnavailableLabel, face, cx, cy-12, muted, text.AlignCenter)
	ui.DrawText(screen, fmt.Sprintf("#%d", e.Index), face, cx, cy+12, muted, text.AlignCenter)
}
