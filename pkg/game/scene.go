package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents one screen of the app (dataset menu, player, fullscreen modal).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Closer 是一个可选接口，场景被替换、弹出或应用退出时调用 Close()
//
// 播放器场景用它取消尚未完成的预加载
type Closer interface {
	Close()
}
