package scenes

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/frames"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/ui"
	"github.com/decker502/marejadas/pkg/utils"
)

// LoadingLabel 图片尚未加载完成时的占位文字
const LoadingLabel = "Cargando…"

const (
	galleryGridTop   = 150.0
	galleryGap       = 12.0
	galleryLabelH    = 28.0
	galleryColumns   = 2
	galleryMaxBottom = config.ScreenHeight - 24.0
)

// GalleryScene 静态图集：区域预报图或折页
//
// 挂载时按批预加载全部图片，加载完一张显示一张；点击缩略图打开 ImageViewerScene。
type GalleryScene struct {
	env     *Env
	gallery config.GalleryConfig
	seq     frames.Sequence
	cache   *frames.Cache
	cancel  context.CancelFunc
	logger  *slog.Logger

	back    *ui.Button
	cells   []*ui.Button
	widgets []interface{ Update(utils.InputState) bool }

	titleFace  *text.GoTextFace
	bodyFace   *text.GoTextFace
	smallFace  *text.GoTextFace
	buttonFace *text.GoTextFace
}

// NewGalleryScene 创建图集场景并开始预加载
func NewGalleryScene(env *Env, gallery config.GalleryConfig) (*GalleryScene, error) {
	seq, err := gallery.Sequence()
	if err != nil {
		return nil, err
	}

	s := &GalleryScene{
		env:        env,
		gallery:    gallery,
		seq:        seq,
		cache:      frames.NewCache(),
		logger:     env.Logger.With("component", "GalleryScene", "gallery", gallery.ID),
		titleFace:  env.Resources.Font(game.FontBold, config.FontSizeTitle),
		bodyFace:   env.Resources.Font(game.FontBold, config.FontSizeBody),
		smallFace:  env.Resources.Font(game.FontRegular, config.FontSizeSmall),
		buttonFace: env.Resources.Font(game.FontBold, config.FontSizeButton),
	}

	s.back = ui.NewButton(ui.Rect{X: config.CardMarginX, Y: 28, W: config.SmallButtonSize, H: config.SmallButtonSize}, ui.IconPrev, "", s.Back)
	s.back.Dark = true
	s.widgets = append(s.widgets, s.back)
	for i, r := range galleryCells(seq.Count()) {
		index := i + 1
		cell := ui.NewButton(r, ui.IconNone, "", func() { s.Expand(index) })
		s.cells = append(s.cells, cell)
		s.widgets = append(s.widgets, cell)
	}

	s.start()
	return s, nil
}

// galleryCells 两列网格，单元格高度随行数缩小以放进一屏
func galleryCells(n int) []ui.Rect {
	rows := (n + galleryColumns - 1) / galleryColumns
	w := (config.ScreenWidth - 2*config.CardMarginX - galleryGap*(galleryColumns-1)) / galleryColumns
	h := w
	if rows > 0 {
		fit := (galleryMaxBottom-galleryGridTop)/float64(rows) - galleryGap - galleryLabelH
		h = math.Min(w, fit)
	}

	cells := make([]ui.Rect, n)
	for i := range cells {
		col, row := i%galleryColumns, i/galleryColumns
		cells[i] = ui.Rect{
			X: config.CardMarginX + float64(col)*(w+galleryGap),
			Y: galleryGridTop + float64(row)*(h+galleryLabelH+galleryGap),
			W: w,
			H: h + galleryLabelH,
		}
	}
	return cells
}

func (s *GalleryScene) start() {
	ctx, cancel := context.WithCancel(s.env.Ctx)
	s.cancel = cancel

	preloader := frames.NewPreloader(s.seq, s.env.Fetcher, s.cache, frames.PreloadOptions{
		BatchSize:    s.env.Config.Preload.BatchSize,
		FrameTimeout: s.env.Config.Preload.FrameTimeout,
		Logger:       s.logger,
	})
	s.logger.Info("gallery mounted", "images", s.seq.Count())

	go func() {
		if err := preloader.Run(ctx); err != nil {
			s.logger.Debug("gallery preload stopped", "err", err)
			return
		}
		s.logger.Info("gallery loaded", "images", s.seq.Count(), "failed", len(s.cache.Failed()))
	}()
}

// Name 场景名称（日志用）
func (s *GalleryScene) Name() string {
	return "gallery:" + s.gallery.ID
}

// Gallery 返回图集配置
func (s *GalleryScene) Gallery() config.GalleryConfig {
	return s.gallery
}

// Cache 返回图片缓存
func (s *GalleryScene) Cache() *frames.Cache {
	return s.cache
}

// Back 返回列表
func (s *GalleryScene) Back() {
	s.env.Scenes.SwitchTo(NewDatasetMenuScene(s.env))
}

// Expand 全屏查看第 index 张图片
func (s *GalleryScene) Expand(index int) {
	s.logger.Debug("expand image", "index", index)
	s.env.Scenes.Push(NewImageViewerScene(s.env, s.gallery, s.seq, s.cache, index))
}

// Update 处理输入
func (s *GalleryScene) Update(deltaTime float64) {
	s.handleInput(utils.GetInputState())
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		s.Back()
	}
}

func (s *GalleryScene) handleInput(in utils.InputState) {
	for _, w := range s.widgets {
		if w.Update(in) {
			return
		}
	}
}

// Close 卸载：放弃进行中的预加载并释放纹理
func (s *GalleryScene) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.env.Resources.ReleaseFrames()
}

// Draw 绘制标题、坐标和缩略图网格
func (s *GalleryScene) Draw(screen *ebiten.Image) {
	screen.Fill(ui.ColorBackground)

	s.back.Draw(screen, s.buttonFace, 1)
	x := config.CardMarginX + config.SmallButtonSize + 14
	name := utils.EllipsizeText(s.gallery.Name, s.titleFace, config.ScreenWidth-x-config.CardMarginX)
	ui.DrawText(screen, name, s.titleFace, x, 42, ui.ColorText, text.AlignStart)
	subtitle := s.gallery.Coordinates()
	if subtitle == "" {
		subtitle = fmt.Sprintf("%d imágenes", s.seq.Count())
	}
	ui.DrawText(screen, subtitle, s.smallFace, x, 66, ui.ColorTextMuted, text.AlignStart)

	heading := "Imágenes"
	if s.gallery.Coordinates() != "" {
		heading = "Datos de Pronóstico"
	}
	ui.DrawText(screen, heading, s.bodyFace, config.CardMarginX, galleryGridTop-30, ui.ColorText, text.AlignStart)

	for i, cell := range s.cells {
		index := i + 1
		r := cell.Bounds
		ui.FillRoundRect(screen, r, 12, ui.ColorCard)
		if cell.State() == ui.StatePressed {
			ui.FillRoundRect(screen, r, 12, ui.ColorTrack)
		}

		label := utils.EllipsizeText(s.gallery.Label(index), s.smallFace, r.W-16)
		ui.DrawText(screen, label, s.smallFace, r.X+r.W/2, r.Y+galleryLabelH/2+2, ui.ColorText, text.AlignCenter)

		thumb := ui.Rect{X: r.X, Y: r.Y + galleryLabelH, W: r.W, H: r.H - galleryLabelH}.Inset(6, 6)
		if e, ok := s.cache.Get(index); ok {
			drawFrame(screen, s.env.Resources, e, thumb, 1, s.smallFace)
			continue
		}
		ui.FillRect(screen, thumb, ui.ColorTrack)
		cx, cy := thumb.Center()
		ui.DrawText(screen, LoadingLabel, s.smallFace, cx, cy, ui.ColorTextMuted, text.AlignCenter)
	}
}
