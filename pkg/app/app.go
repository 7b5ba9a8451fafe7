// Package app 提供应用的核心包装器
//
// 该包把初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/frames"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/scenes"
	"github.com/decker502/marejadas/pkg/utils"
)

// storageAppName gdata 存储目录名
const storageAppName = "marejadas_uv"

// Config 定义应用启动配置
type Config struct {
	// ConfigPath 应用配置文件，为空使用内嵌的 data/app.yaml
	ConfigPath string
	// Dataset 直接打开的数据集 ID，为空则显示数据集列表
	Dataset string
	// BaseURL 替换帧地址的协议和主机（离线镜像或测试服务器）
	BaseURL string
	// Logger 为 nil 时使用 slog.Default()
	Logger *slog.Logger
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	cfg          *config.AppConfig
	sceneManager *game.SceneManager
	settings     *game.SettingsManager
	logger       *slog.Logger
	cancel       context.CancelFunc

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 使用内嵌配置前，必须先调用 embedded.Init()。
func NewApp(opts Config) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}
	cfg.ApplyBaseURL(opts.BaseURL)

	rates, err := cfg.Rates()
	if err != nil {
		return nil, fmt.Errorf("速率配置无效: %w", err)
	}

	resourceManager, err := game.NewResourceManager(logger)
	if err != nil {
		return nil, fmt.Errorf("字体加载失败: %w", err)
	}

	settings := game.NewSettingsManager(openStorage(logger), logger)
	sceneManager := game.NewSceneManager(logger)

	ctx, cancel := context.WithCancel(context.Background())
	env := &scenes.Env{
		Ctx:       ctx,
		Config:    cfg,
		Rates:     rates,
		Fetcher:   frames.NewHTTPFetcher(),
		Resources: resourceManager,
		Scenes:    sceneManager,
		Settings:  settings,
		Logger:    logger,
	}

	menu := scenes.NewDatasetMenuScene(env)
	sceneManager.SwitchTo(menu)
	if opts.Dataset != "" {
		menu.Open(opts.Dataset)
	}

	logger.Info("app started",
		"config", path,
		"datasets", len(cfg.Datasets),
		"batch_size", cfg.Preload.BatchSize,
		"persistent_prefs", settings.Persistent())

	return &App{
		cfg:          cfg,
		sceneManager: sceneManager,
		settings:     settings,
		logger:       logger.With("component", "App"),
		cancel:       cancel,
	}, nil
}

// openStorage 打开 gdata；失败时返回 nil（偏好只保存在内存）
func openStorage(logger *slog.Logger) *gdata.Manager {
	if err := utils.EnsureStorageDir(storageAppName); err != nil {
		logger.Warn("storage dir unavailable", "path", utils.StoragePath(storageAppName), "err", err)
		return nil
	}
	m, err := gdata.Open(gdata.Config{AppName: storageAppName})
	if err != nil {
		logger.Warn("gdata unavailable, preferences will not persist", "err", err)
		return nil
	}
	return m
}

// WindowConfig 返回桌面窗口配置
func (a *App) WindowConfig() config.WindowConfig {
	return a.cfg.Window
}

// StartFullscreen 上次退出时窗口是否全屏
func (a *App) StartFullscreen() bool {
	return a.settings.Preferences().Fullscreen
}

// Update 更新逻辑
// 每个 tick 调用一次（默认每秒 60 次）
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		a.Shutdown()
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换窗口全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) && !utils.IsMobile() {
		a.toggleWindowFullscreen()
	}

	a.sceneManager.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

func (a *App) toggleWindowFullscreen() {
	fullscreen := !ebiten.IsFullscreen()
	ebiten.SetFullscreen(fullscreen)
	if !fullscreen {
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
	}

	a.settings.SetFullscreen(fullscreen)
	if err := a.settings.Save(); err != nil {
		a.logger.Warn("failed to save preferences", "err", err)
	}
	a.logger.Debug("window fullscreen toggled", "fullscreen", fullscreen)
}

// Shutdown 关闭所有场景并取消进行中的预加载
func (a *App) Shutdown() {
	a.sceneManager.Close()
	a.cancel()
	if err := a.settings.Save(); err != nil {
		a.logger.Warn("failed to save preferences", "err", err)
	}
	a.logger.Info("app stopped")
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 控制缩放滤波和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸（竖屏手机），Ebitengine 负责缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}
