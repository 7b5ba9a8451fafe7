package scenes

import (
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/player"
	"github.com/decker502/marejadas/pkg/ui"
	"github.com/decker502/marejadas/pkg/utils"
)

// hudFadeSeconds HUD 淡入淡出时长
const hudFadeSeconds = 0.25

// 全屏布局
var (
	fsFrameRect   = ui.Rect{X: 0, Y: config.HUDHeaderHeight, W: config.ScreenWidth, H: config.ScreenHeight - config.HUDHeaderHeight - config.HUDFooterHeight}
	fsHeaderRect  = ui.Rect{X: 0, Y: 0, W: config.ScreenWidth, H: config.HUDHeaderHeight}
	fsFooterRect  = ui.Rect{X: 0, Y: config.ScreenHeight - config.HUDFooterHeight, W: config.ScreenWidth, H: config.HUDFooterHeight}
	fsControlsY   = fsFooterRect.Y + 16
	fsSegmentRect = ui.Rect{X: 60, Y: fsControlsY + config.ControlButtonSize + 16, W: config.ScreenWidth - 120, H: config.SegmentHeight}
)

// FullscreenScene 全屏播放覆盖层
//
// 两个帧槽叠放，只有一个不透明；隐藏槽提前上传下一帧，翻转时没有空白。
// HUD（顶部关闭按钮和帧计数、底部控件）3 秒无操作后淡出，点击背景切换显示。
type FullscreenScene struct {
	env     *Env
	player  *player.Player
	session *player.FullscreenSession
	logger  *slog.Logger

	close   *ui.Button
	prev    *ui.Button
	play    *ui.Button
	next    *ui.Button
	rates   *ui.SegmentedControl
	widgets []interface{ Update(utils.InputState) bool }

	hudFade *utils.Fader
	closed  bool

	bodyFace   *text.GoTextFace
	smallFace  *text.GoTextFace
	buttonFace *text.GoTextFace
}

// NewFullscreenScene 创建全屏覆盖层
func NewFullscreenScene(env *Env, p *player.Player, session *player.FullscreenSession) *FullscreenScene {
	s := &FullscreenScene{
		env:        env,
		player:     p,
		session:    session,
		logger:     env.Logger.With("component", "FullscreenScene", "player_id", p.ID()[:8]),
		hudFade:    utils.NewFader(1, hudFadeSeconds),
		bodyFace:   env.Resources.Font(game.FontBold, config.FontSizeBody),
		smallFace:  env.Resources.Font(game.FontRegular, config.FontSizeSmall),
		buttonFace: env.Resources.Font(game.FontBold, config.FontSizeButton),
	}

	s.close = ui.NewButton(ui.Rect{X: 12, Y: (config.HUDHeaderHeight - config.SmallButtonSize) / 2, W: config.SmallButtonSize, H: config.SmallButtonSize}, ui.IconClose, "", s.Exit)
	s.close.Dark = true

	size := config.ControlButtonSize
	cx := float64(config.ScreenWidth) / 2
	s.prev = ui.NewButton(ui.Rect{X: cx - size*1.5 - 20, Y: fsControlsY, W: size, H: size}, ui.IconPrev, "", func() { s.session.StepBack() })
	s.play = ui.NewButton(ui.Rect{X: cx - size/2, Y: fsControlsY, W: size, H: size}, ui.IconPlay, "", s.session.TogglePlay)
	s.next = ui.NewButton(ui.Rect{X: cx + size/2 + 20, Y: fsControlsY, W: size, H: size}, ui.IconNext, "", func() { s.session.StepForward() })
	for _, b := range []*ui.Button{s.prev, s.play, s.next} {
		b.Dark = true
		b.Round = true
	}

	s.rates = ui.NewSegmentedControl(fsSegmentRect, rateLabels(env.Rates), player.IndexOfInterval(env.Rates, session.Interval()), func(i int) {
		s.session.SetRate(s.env.Rates[i].Interval)
	})
	s.rates.Dark = true

	s.widgets = []interface{ Update(utils.InputState) bool }{s.close, s.prev, s.play, s.next, s.rates}
	return s
}

// Name 场景名称（日志用）
func (s *FullscreenScene) Name() string {
	return "fullscreen"
}

// Session 返回全屏会话
func (s *FullscreenScene) Session() *player.FullscreenSession {
	return s.session
}

// Exit 关闭全屏，回到内联播放器
func (s *FullscreenScene) Exit() {
	if s.closed {
		return
	}
	s.env.Scenes.Pop()
}

// Close 由 SceneManager 在弹出时调用，把最后显示的帧同步回内联播放器
func (s *FullscreenScene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	last := s.player.ExitFullscreen()
	s.logger.Debug("fullscreen closed", "frame", last, "swaps", s.session.Buffer().Swaps())
}

// Update 处理输入、推进会话并预取隐藏槽
func (s *FullscreenScene) Update(deltaTime float64) {
	s.handleInput(utils.GetInputState())
	if s.closed {
		return
	}
	s.handleKeys()
	if s.closed {
		return
	}
	s.step(deltaTime)
}

// handleInput HUD 可见时控件优先，未命中控件的按下视为点击背景
func (s *FullscreenScene) handleInput(in utils.InputState) {
	if s.session.HUD().Visible() {
		for _, w := range s.widgets {
			if w.Update(in) {
				return
			}
		}
	}
	if in.JustPressed {
		s.session.TapBackground()
	}
}

func (s *FullscreenScene) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		s.Exit()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		s.session.TogglePlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		s.session.StepBack()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		s.session.StepForward()
	}
}

func (s *FullscreenScene) step(deltaTime float64) {
	s.player.Update(seconds(deltaTime))

	// 隐藏槽的帧提前上传到 GPU
	hidden := s.session.Buffer().Hidden()
	s.env.Resources.FrameImage(s.player.Frame(hidden.Frame))

	if s.session.HUD().Visible() {
		s.hudFade.SetTarget(1)
	} else {
		s.hudFade.SetTarget(0)
	}
	s.hudFade.Update(deltaTime)

	if s.session.Playing() {
		s.play.Icon = ui.IconPause
	} else {
		s.play.Icon = ui.IconPlay
	}
	s.rates.Selected = player.IndexOfInterval(s.env.Rates, s.session.Interval())
}

// Draw 绘制黑色背景、两个帧槽和 HUD
func (s *FullscreenScene) Draw(screen *ebiten.Image) {
	screen.Fill(ui.ColorBlack)

	buf := s.session.Buffer()
	alphaA, alphaB := buf.SlotOpacity()
	a, b := buf.Slot(false), buf.Slot(true)
	drawFrame(screen, s.env.Resources, s.player.Frame(a.Frame), fsFrameRect, alphaA, s.smallFace)
	drawFrame(screen, s.env.Resources, s.player.Frame(b.Frame), fsFrameRect, alphaB, s.smallFace)

	alpha := s.hudFade.Alpha()
	if alpha <= 0 {
		return
	}
	ui.FillRect(screen, fsHeaderRect, ui.WithAlpha(ui.ColorScrim, alpha))
	ui.FillRect(screen, fsFooterRect, ui.WithAlpha(ui.ColorScrim, alpha))

	s.close.Draw(screen, s.buttonFace, alpha)
	counter := fmt.Sprintf("Frame %d/%d", s.session.VisibleFrame(), s.player.Sequence().Count())
	cx, cy := fsHeaderRect.Center()
	ui.DrawText(screen, counter, s.bodyFace, cx, cy, ui.WithAlpha(ui.ColorWhite, alpha), text.AlignCenter)

	s.prev.Draw(screen, s.buttonFace, alpha)
	s.play.Draw(screen, s.buttonFace, alpha)
	s.next.Draw(screen, s.buttonFace, alpha)
	s.rates.Draw(screen, s.buttonFace, alpha)
}
