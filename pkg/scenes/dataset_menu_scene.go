package scenes

import (
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/ui"
	"github.com/decker502/marejadas/pkg/utils"
)

const menuListTop = 132.0

// DatasetMenuScene 预报动画列表
// 点击一行打开对应的播放器，上次打开的数据集会高亮；
// 下方列出区域预报图和折页图集
type DatasetMenuScene struct {
	env       *Env
	rows      []*ui.Button
	galleries []*ui.Button
	logger    *slog.Logger

	titleFace *text.GoTextFace
	bodyFace  *text.GoTextFace
	smallFace *text.GoTextFace
}

// NewDatasetMenuScene 创建数据集列表场景
func NewDatasetMenuScene(env *Env) *DatasetMenuScene {
	s := &DatasetMenuScene{
		env:       env,
		logger:    env.Logger.With("component", "DatasetMenuScene"),
		titleFace: env.Resources.Font(game.FontBold, config.FontSizeTitle),
		bodyFace:  env.Resources.Font(game.FontRegular, config.FontSizeBody),
		smallFace: env.Resources.Font(game.FontRegular, config.FontSizeSmall),
	}

	for i, d := range env.Config.Datasets {
		id := d.ID
		bounds := ui.Rect{
			X: config.CardMarginX,
			Y: menuListTop + float64(i)*(config.ListRowHeight+12),
			W: config.ScreenWidth - 2*config.CardMarginX,
			H: config.ListRowHeight,
		}
		s.rows = append(s.rows, ui.NewButton(bounds, ui.IconNone, d.Name, func() { s.Open(id) }))
	}

	top := s.galleryTop()
	for i, g := range env.Config.Galleries {
		id := g.ID
		bounds := ui.Rect{
			X: config.CardMarginX,
			Y: top + float64(i)*(config.ListRowHeight+12),
			W: config.ScreenWidth - 2*config.CardMarginX,
			H: config.ListRowHeight,
		}
		s.galleries = append(s.galleries, ui.NewButton(bounds, ui.IconNone, g.Name, func() { s.OpenGallery(id) }))
	}
	return s
}

// galleryTop 图集列表的起始位置（数据集列表和小标题之后）
func (s *DatasetMenuScene) galleryTop() float64 {
	return menuListTop + float64(len(s.env.Config.Datasets))*(config.ListRowHeight+12) + 44
}

// Name 场景名称（日志用）
func (s *DatasetMenuScene) Name() string {
	return "dataset_menu"
}

// Open 打开指定数据集的播放器并记住选择
func (s *DatasetMenuScene) Open(id string) {
	dataset := s.env.Config.Dataset(id)
	s.env.Settings.SetLastDataset(dataset.ID)
	if err := s.env.Settings.Save(); err != nil {
		s.logger.Warn("failed to save preferences", "err", err)
	}

	scene, err := NewPlayerScene(s.env, dataset)
	if err != nil {
		s.logger.Error("failed to open dataset", "dataset", dataset.ID, "err", err)
		return
	}
	s.logger.Info("open dataset", "dataset", dataset.ID)
	s.env.Scenes.SwitchTo(scene)
}

// OpenGallery 打开静态图集
func (s *DatasetMenuScene) OpenGallery(id string) {
	g, ok := s.env.Config.Gallery(id)
	if !ok {
		s.logger.Warn("unknown gallery", "gallery", id)
		return
	}
	scene, err := NewGalleryScene(s.env, g)
	if err != nil {
		s.logger.Error("failed to open gallery", "gallery", id, "err", err)
		return
	}
	s.logger.Info("open gallery", "gallery", id)
	s.env.Scenes.SwitchTo(scene)
}

// Update 处理输入
func (s *DatasetMenuScene) Update(deltaTime float64) {
	s.handleInput(utils.GetInputState())

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		s.Open(s.env.Settings.Preferences().LastDataset)
	}
}

func (s *DatasetMenuScene) handleInput(in utils.InputState) {
	for _, row := range s.rows {
		if row.Update(in) {
			return
		}
	}
	for _, row := range s.galleries {
		if row.Update(in) {
			return
		}
	}
}

// Draw 绘制列表
func (s *DatasetMenuScene) Draw(screen *ebiten.Image) {
	screen.Fill(ui.ColorBackground)

	ui.DrawText(screen, "Marejadas UV", s.titleFace, config.CardMarginX, 52, ui.ColorText, text.AlignStart)
	ui.DrawText(screen, "Pronóstico oceánico · Mapa Animado", s.smallFace, config.CardMarginX, 84, ui.ColorTextMuted, text.AlignStart)

	last := s.env.Settings.Preferences().LastDataset
	for i, row := range s.rows {
		d := s.env.Config.Datasets[i]
		r := row.Bounds
		ui.FillRoundRect(screen, r, 12, ui.ColorCard)
		if d.ID == last {
			ui.FillRect(screen, ui.Rect{X: r.X, Y: r.Y + 12, W: 4, H: r.H - 24}, ui.ColorPrimary)
		}
		if row.State() == ui.StatePressed {
			ui.FillRoundRect(screen, r, 12, ui.ColorTrack)
		}

		name := utils.EllipsizeText(d.Name, s.bodyFace, r.W-40)
		ui.DrawText(screen, name, s.bodyFace, r.X+20, r.Y+r.H*0.38, ui.ColorText, text.AlignStart)
		ui.DrawText(screen, fmt.Sprintf("%d frames", d.Frames), s.smallFace, r.X+20, r.Y+r.H*0.7, ui.ColorTextMuted, text.AlignStart)
	}

	if len(s.galleries) == 0 {
		return
	}
	ui.DrawText(screen, "Zonas y folletos", s.bodyFace, config.CardMarginX, s.galleryTop()-22, ui.ColorText, text.AlignStart)
	for i, row := range s.galleries {
		g := s.env.Config.Galleries[i]
		r := row.Bounds
		ui.FillRoundRect(screen, r, 12, ui.ColorCard)
		if row.State() == ui.StatePressed {
			ui.FillRoundRect(screen, r, 12, ui.ColorTrack)
		}

		detail := g.Coordinates()
		if detail == "" {
			detail = fmt.Sprintf("%d imágenes", len(g.Images))
		}
		name := utils.EllipsizeText(g.Name, s.bodyFace, r.W-40)
		ui.DrawText(screen, name, s.bodyFace, r.X+20, r.Y+r.H*0.38, ui.ColorText, text.AlignStart)
		ui.DrawText(screen, detail, s.smallFace, r.X+20, r.Y+r.H*0.7, ui.ColorTextMuted, text.AlignStart)
	}
}
