package scenes

import (
	"errors"
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

// 内联播放卡片布局
var (
	cardWidth    = config.ScreenWidth - 2*config.CardMarginX
	frameRect    = ui.Rect{X: config.CardMarginX, Y: config.CardTop, W: cardWidth, H: cardWidth / config.FrameAspect}
	counterY     = frameRect.Y + frameRect.H + 24
	scrubRect    = ui.Rect{X: config.CardMarginX + 12, Y: counterY + 28, W: cardWidth - 24, H: config.ScrubBarHeight}
	controlsY    = scrubRect.Y + 30
	segmentRect  = ui.Rect{X: config.CardMarginX + 40, Y: controlsY + config.ControlButtonSize + 18, W: cardWidth - 80, H: config.SegmentHeight}
	progressRect = ui.Rect{X: config.CardMarginX + 40, Y: frameRect.Y + frameRect.H/2 + 24, W: cardWidth - 80, H: 6}
)

// PlayerScene 内联播放器
//
// 挂载时开始预加载，预加载完成前控件禁用并显示进度。
type PlayerScene struct {
	env     *Env
	dataset config.DatasetConfig
	player  *player.Player
	logger  *slog.Logger

	back    *ui.Button
	expand  *ui.Button
	prev    *ui.Button
	play    *ui.Button
	next    *ui.Button
	rates   *ui.SegmentedControl
	scrub   *ui.ScrubBar
	widgets []interface{ Update(utils.InputState) bool }

	wasReady bool
	failed   int // 预加载失败的帧数

	titleFace  *text.GoTextFace
	bodyFace   *text.GoTextFace
	smallFace  *text.GoTextFace
	buttonFace *text.GoTextFace
}

// NewPlayerScene 创建播放器场景并开始预加载
func NewPlayerScene(env *Env, dataset config.DatasetConfig) (*PlayerScene, error) {
	seq, err := dataset.Sequence()
	if err != nil {
		return nil, err
	}

	opts := env.Config.PlayerOptions()
	opts.Logger = env.Logger.With("dataset", dataset.ID)
	p := player.New(seq, env.Fetcher, opts)

	s := &PlayerScene{
		env:        env,
		dataset:    dataset,
		player:     p,
		logger:     env.Logger.With("component", "PlayerScene", "dataset", dataset.ID),
		titleFace:  env.Resources.Font(game.FontBold, config.FontSizeTitle),
		bodyFace:   env.Resources.Font(game.FontRegular, config.FontSizeBody),
		smallFace:  env.Resources.Font(game.FontRegular, config.FontSizeSmall),
		buttonFace: env.Resources.Font(game.FontBold, config.FontSizeButton),
	}
	s.buildControls()

	p.Start(env.Ctx)
	return s, nil
}

func (s *PlayerScene) buildControls() {
	s.back = ui.NewButton(ui.Rect{X: config.CardMarginX, Y: 28, W: config.SmallButtonSize, H: config.SmallButtonSize}, ui.IconPrev, "", s.Back)
	s.back.Dark = true
	s.expand = ui.NewButton(ui.Rect{
		X: frameRect.X + frameRect.W - config.SmallButtonSize - 8,
		Y: frameRect.Y + 8,
		W: config.SmallButtonSize,
		H: config.SmallButtonSize,
	}, ui.IconExpand, "", s.OpenFullscreen)
	s.expand.Dark = true

	size := config.ControlButtonSize
	cx := float64(config.ScreenWidth) / 2
	s.prev = ui.NewButton(ui.Rect{X: cx - size*1.5 - 20, Y: controlsY, W: size, H: size}, ui.IconPrev, "", func() { s.player.StepBack() })
	s.play = ui.NewButton(ui.Rect{X: cx - size/2, Y: controlsY, W: size, H: size}, ui.IconPlay, "", s.togglePlay)
	s.play.Round = true
	s.next = ui.NewButton(ui.Rect{X: cx + size/2 + 20, Y: controlsY, W: size, H: size}, ui.IconNext, "", func() { s.player.StepForward() })

	selected := player.IndexOfInterval(s.env.Rates, s.player.Interval())
	s.rates = ui.NewSegmentedControl(segmentRect, rateLabels(s.env.Rates), selected, func(i int) {
		s.player.SetRate(s.env.Rates[i].Interval)
	})
	s.scrub = ui.NewScrubBar(scrubRect, config.ScrubBarTouchPadding, s.player.Sequence().Count(), func(frame int) {
		s.player.Seek(frame)
	})

	// 顺序即命中优先级
	s.widgets = []interface{ Update(utils.InputState) bool }{s.back, s.expand, s.prev, s.play, s.next, s.rates, s.scrub}
	s.setControlsEnabled(false)
}

// setControlsEnabled 预加载完成前除返回键外的控件都不响应
func (s *PlayerScene) setControlsEnabled(ready bool) {
	for _, b := range []*ui.Button{s.expand, s.prev, s.play, s.next} {
		b.Enabled = ready
	}
	s.rates.Enabled = ready
	s.scrub.Enabled = ready
}

// Name 场景名称（日志用）
func (s *PlayerScene) Name() string {
	return "player:" + s.dataset.ID
}

// Player 返回播放器
func (s *PlayerScene) Player() *player.Player {
	return s.player
}

// Back 返回数据集列表
func (s *PlayerScene) Back() {
	s.env.Scenes.SwitchTo(NewDatasetMenuScene(s.env))
}

// OpenFullscreen 打开全屏覆盖层
func (s *PlayerScene) OpenFullscreen() {
	session, err := s.player.EnterFullscreen()
	if err != nil {
		s.logger.Debug("fullscreen unavailable", "err", err)
		return
	}
	s.env.Scenes.Push(NewFullscreenScene(s.env, s.player, session))
}

func (s *PlayerScene) togglePlay() {
	if err := s.player.TogglePlay(); err != nil && !errors.Is(err, player.ErrNotReady) {
		s.logger.Warn("toggle play failed", "err", err)
	}
}

// Update 处理输入并推进播放计时器
func (s *PlayerScene) Update(deltaTime float64) {
	s.handleInput(utils.GetInputState())
	s.handleKeys()
	s.step(deltaTime)
}

func (s *PlayerScene) handleInput(in utils.InputState) {
	for _, w := range s.widgets {
		if w.Update(in) {
			return
		}
	}
}

func (s *PlayerScene) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		s.Back()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		s.togglePlay()
	case !s.wasReady:
		// 预加载中方向键和 F 键无效
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		s.player.StepBack()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		s.player.StepForward()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		s.OpenFullscreen()
	}
}

// step 推进播放器并把状态同步到控件
func (s *PlayerScene) step(deltaTime float64) {
	s.player.Update(seconds(deltaTime))

	ready := s.player.State() != player.StatePreloading && s.player.State() != player.StateIdle
	if ready && !s.wasReady {
		s.failed = len(s.player.Cache().Failed())
		s.logger.Info("preload finished", "frames", s.player.Sequence().Count(), "failed", s.failed)
	}
	s.wasReady = ready

	s.setControlsEnabled(ready)
	if s.player.Playing() {
		s.play.Icon = ui.IconPause
	} else {
		s.play.Icon = ui.IconPlay
	}
	if !s.scrub.Dragging() {
		s.scrub.Value = s.player.Current()
	}
	s.rates.Selected = player.IndexOfInterval(s.env.Rates, s.player.Interval())
}

// Close 卸载：停止计时器并放弃预加载
func (s *PlayerScene) Close() {
	s.player.Close()
	s.env.Resources.ReleaseFrames()
}

// Draw 绘制播放卡片
func (s *PlayerScene) Draw(screen *ebiten.Image) {
	screen.Fill(ui.ColorBackground)

	s.back.Draw(screen, s.buttonFace, 1)
	ui.DrawText(screen, "Mapa Animado", s.titleFace, config.CardMarginX+config.SmallButtonSize+14, 42, ui.ColorText, text.AlignStart)
	name := utils.EllipsizeText(s.dataset.Name, s.smallFace, cardWidth-config.SmallButtonSize-14)
	ui.DrawText(screen, name, s.smallFace, config.CardMarginX+config.SmallButtonSize+14, 66, ui.ColorTextMuted, text.AlignStart)

	card := ui.Rect{X: config.CardMarginX, Y: frameRect.Y, W: cardWidth, H: segmentRect.Y + segmentRect.H + 16 - frameRect.Y}
	ui.FillRoundRect(screen, card, 12, ui.ColorCard)

	if s.player.State() == player.StatePreloading || s.player.State() == player.StateIdle {
		s.drawPreloading(screen)
	} else {
		drawFrame(screen, s.env.Resources, s.player.Frame(s.player.Current()), frameRect, 1, s.smallFace)
		s.expand.Draw(screen, s.buttonFace, 1)
	}

	counter := fmt.Sprintf("Frame: %d/%d", s.player.Current(), s.player.Sequence().Count())
	ui.DrawText(screen, counter, s.bodyFace, config.ScreenWidth/2, counterY, ui.ColorText, text.AlignCenter)

	s.scrub.Draw(screen, 1)
	s.prev.Draw(screen, s.buttonFace, 1)
	s.play.Draw(screen, s.buttonFace, 1)
	s.next.Draw(screen, s.buttonFace, 1)
	s.rates.Draw(screen, s.buttonFace, 1)

	if s.failed > 0 {
		y := card.Y + card.H + 28
		for _, line := range utils.WrapText(FailedLabel(s.failed), s.smallFace, cardWidth) {
			ui.DrawText(screen, line, s.smallFace, config.ScreenWidth/2, y, ui.ColorWarning, text.AlignCenter)
			y += config.FontSizeSmall + 6
		}
	}
}

func (s *PlayerScene) drawPreloading(screen *ebiten.Image) {
	ui.FillRect(screen, frameRect, ui.ColorTrack)
	pr := s.player.Progress()

	cx, cy := frameRect.Center()
	ui.DrawText(screen, PreloadLabel(pr.Percent), s.bodyFace, cx, cy, ui.ColorText, text.AlignCenter)

	ui.FillRoundRect(screen, progressRect, progressRect.H/2, ui.ColorCard)
	filled := progressRect
	filled.W = progressRect.W * float64(pr.Percent) / 100
	ui.FillRoundRect(screen, filled, progressRect.H/2, ui.ColorPrimary)
}

// FailedLabel 预加载结束后的失败帧提示
func FailedLabel(n int) string {
	if n == 1 {
		return "1 frame no disponible; se muestra un marcador en su lugar"
	}
	return fmt.Sprintf("%d frames no disponibles; se muestra un marcador en su lugar", n)
}

// PreloadLabel 预加载进度文本
func PreloadLabel(percent int) string {
	return fmt.Sprintf("Precargando frames: %d%%", percent)
}
