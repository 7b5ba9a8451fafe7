package game

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager manages which scene is active.
//
// 除了当前场景外还维护一个覆盖层栈（全屏播放器以模态方式覆盖在内联播放器之上）：
//   - Update 只驱动最上层
//   - Draw 从底到顶依次绘制，覆盖层自己负责遮住下层
type SceneManager struct {
	currentScene Scene
	overlays     []Scene
	logger       *slog.Logger
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager(logger *slog.Logger) *SceneManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SceneManager{logger: logger.With("component", "scenes")}
}

// SwitchTo changes the base scene, closing the previous scene and every overlay.
func (sm *SceneManager) SwitchTo(scene Scene) {
	sm.closeOverlays()
	if sm.currentScene != nil && sm.currentScene != scene {
		closeScene(sm.currentScene)
	}
	sm.currentScene = scene
	sm.logger.Debug("switched scene", "scene", sceneName(scene))
}

// Push 压入一个覆盖层
func (sm *SceneManager) Push(overlay Scene) {
	if overlay == nil {
		return
	}
	sm.overlays = append(sm.overlays, overlay)
	sm.logger.Debug("pushed overlay", "scene", sceneName(overlay), "depth", len(sm.overlays))
}

// Pop 弹出最上层覆盖层并返回它，没有覆盖层时返回 nil
func (sm *SceneManager) Pop() Scene {
	n := len(sm.overlays)
	if n == 0 {
		return nil
	}
	top := sm.overlays[n-1]
	sm.overlays[n-1] = nil
	sm.overlays = sm.overlays[:n-1]
	closeScene(top)
	sm.logger.Debug("popped overlay", "scene", sceneName(top), "depth", len(sm.overlays))
	return top
}

// Top 返回接收输入的场景（最上层覆盖层或当前场景）
func (sm *SceneManager) Top() Scene {
	if n := len(sm.overlays); n > 0 {
		return sm.overlays[n-1]
	}
	return sm.currentScene
}

// GetCurrentScene 返回基础场景
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// OverlayCount 返回覆盖层数量
func (sm *SceneManager) OverlayCount() int {
	return len(sm.overlays)
}

// Update updates the top-most scene only.
func (sm *SceneManager) Update(deltaTime float64) {
	if top := sm.Top(); top != nil {
		top.Update(deltaTime)
	}
}

// Draw renders the base scene and then every overlay in order.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
	for _, o := range sm.overlays {
		o.Draw(screen)
	}
}

// Close 关闭所有场景（应用退出时调用）
func (sm *SceneManager) Close() {
	sm.closeOverlays()
	if sm.currentScene != nil {
		closeScene(sm.currentScene)
		sm.currentScene = nil
	}
}

func (sm *SceneManager) closeOverlays() {
	for len(sm.overlays) > 0 {
		sm.Pop()
	}
}

func closeScene(s Scene) {
	if c, ok := s.(Closer); ok {
		c.Close()
	}
}

func sceneName(s Scene) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "anonymous"
}
