package scenes

import (
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/frames"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/player"
	"github.com/decker502/marejadas/pkg/ui"
	"github.com/decker502/marejadas/pkg/utils"
)

var viewerNavY = config.ScreenHeight - config.HUDFooterHeight/2 - config.ControlButtonSize/2

// ImageViewerScene 单张静态图片的全屏查看覆盖层
//
// 上一张/下一张在两端停住，不循环。HUD 和全屏播放一样 3 秒后淡出，点击背景切换。
type ImageViewerScene struct {
	env     *Env
	gallery config.GalleryConfig
	seq     frames.Sequence
	cache   *frames.Cache
	index   int
	logger  *slog.Logger

	hud     *player.HUD
	hudFade *utils.Fader

	close   *ui.Button
	prev    *ui.Button
	next    *ui.Button
	widgets []interface{ Update(utils.InputState) bool }
	closed  bool

	bodyFace   *text.GoTextFace
	smallFace  *text.GoTextFace
	buttonFace *text.GoTextFace
}

// NewImageViewerScene 创建查看器，index 为 1 起始
func NewImageViewerScene(env *Env, gallery config.GalleryConfig, seq frames.Sequence, cache *frames.Cache, index int) *ImageViewerScene {
	s := &ImageViewerScene{
		env:        env,
		gallery:    gallery,
		seq:        seq,
		cache:      cache,
		index:      seq.Clamp(index),
		logger:     env.Logger.With("component", "ImageViewerScene", "gallery", gallery.ID),
		hud:        player.NewHUD(env.Config.Playback.HUDHideDelay),
		hudFade:    utils.NewFader(1, hudFadeSeconds),
		bodyFace:   env.Resources.Font(game.FontBold, config.FontSizeBody),
		smallFace:  env.Resources.Font(game.FontRegular, config.FontSizeSmall),
		buttonFace: env.Resources.Font(game.FontBold, config.FontSizeButton),
	}

	s.close = ui.NewButton(ui.Rect{X: 12, Y: (config.HUDHeaderHeight - config.SmallButtonSize) / 2, W: config.SmallButtonSize, H: config.SmallButtonSize}, ui.IconClose, "", s.Exit)
	size := config.ControlButtonSize
	s.prev = ui.NewButton(ui.Rect{X: 40, Y: viewerNavY, W: size, H: size}, ui.IconPrev, "", s.Prev)
	s.next = ui.NewButton(ui.Rect{X: config.ScreenWidth - 40 - size, Y: viewerNavY, W: size, H: size}, ui.IconNext, "", s.Next)
	for _, b := range []*ui.Button{s.close, s.prev, s.next} {
		b.Dark = true
	}
	s.prev.Round = true
	s.next.Round = true

	s.widgets = []interface{ Update(utils.InputState) bool }{s.close, s.prev, s.next}
	s.syncNav()
	return s
}

// Name 场景名称（日志用）
func (s *ImageViewerScene) Name() string {
	return "image_viewer:" + s.gallery.ID
}

// Index 返回当前图片（1 起始）
func (s *ImageViewerScene) Index() int {
	return s.index
}

// HUD 返回 HUD 状态
func (s *ImageViewerScene) HUD() *player.HUD {
	return s.hud
}

// Title 顶部标题："Imagen i de N"
func (s *ImageViewerScene) Title() string {
	return fmt.Sprintf("Imagen %d de %d", s.index, s.seq.Count())
}

// Prev 上一张，第一张时无效
func (s *ImageViewerScene) Prev() {
	s.show(s.index - 1)
}

// Next 下一张，最后一张时无效
func (s *ImageViewerScene) Next() {
	s.show(s.index + 1)
}

func (s *ImageViewerScene) show(index int) {
	s.hud.Touch()
	if !s.seq.Contains(index) {
		return
	}
	s.index = index
	s.syncNav()
}

func (s *ImageViewerScene) syncNav() {
	s.prev.Enabled = s.index > 1
	s.next.Enabled = s.index < s.seq.Count()
}

// Exit 关闭查看器
func (s *ImageViewerScene) Exit() {
	if s.closed {
		return
	}
	s.env.Scenes.Pop()
}

// Close 由 SceneManager 在弹出时调用
func (s *ImageViewerScene) Close() {
	s.closed = true
	s.logger.Debug("image viewer closed", "index", s.index)
}

// Update 处理输入并推进 HUD 计时器
func (s *ImageViewerScene) Update(deltaTime float64) {
	s.handleInput(utils.GetInputState())
	if s.closed {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		s.Exit()
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		s.Prev()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		s.Next()
	}
	s.step(deltaTime)
}

// handleInput HUD 可见时控件优先，其余按下切换 HUD
func (s *ImageViewerScene) handleInput(in utils.InputState) {
	if s.hud.Visible() {
		for _, w := range s.widgets {
			if w.Update(in) {
				if in.JustPressed {
					s.hud.Touch()
				}
				return
			}
		}
	}
	if in.JustPressed {
		s.hud.Toggle()
	}
}

func (s *ImageViewerScene) step(deltaTime float64) {
	s.hud.Update(seconds(deltaTime))
	if s.hud.Visible() {
		s.hudFade.SetTarget(1)
	} else {
		s.hudFade.SetTarget(0)
	}
	s.hudFade.Update(deltaTime)
}

// Draw 绘制黑色背景、当前图片和 HUD
func (s *ImageViewerScene) Draw(screen *ebiten.Image) {
	screen.Fill(ui.ColorBlack)

	if e, ok := s.cache.Get(s.index); ok {
		drawFrame(screen, s.env.Resources, e, fsFrameRect, 1, s.smallFace)
	} else {
		cx, cy := fsFrameRect.Center()
		ui.DrawText(screen, LoadingLabel, s.bodyFace, cx, cy, ui.ColorTextMuted, text.AlignCenter)
	}

	alpha := s.hudFade.Alpha()
	if alpha <= 0 {
		return
	}
	ui.FillRect(screen, fsHeaderRect, ui.WithAlpha(ui.ColorScrim, alpha))
	s.close.Draw(screen, s.buttonFace, alpha)
	cx, cy := fsHeaderRect.Center()
	ui.DrawText(screen, s.Title(), s.bodyFace, cx, cy-9, ui.WithAlpha(ui.ColorWhite, alpha), text.AlignCenter)
	ui.DrawText(screen, s.gallery.Label(s.index), s.smallFace, cx, cy+13, ui.WithAlpha(ui.ColorTextMuted, alpha), text.AlignCenter)

	s.prev.Draw(screen, s.buttonFace, alpha)
	s.next.Draw(screen, s.buttonFace, alpha)
}
