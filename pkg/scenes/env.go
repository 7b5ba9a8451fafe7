// Package scenes 实现应用的各个界面
//
//   - DatasetMenuScene: 选择预报动画
//   - PlayerScene: 内联播放卡片（预加载进度、帧计数、进度条、控制按钮、速率）
//   - FullscreenScene: 全屏模态覆盖层（双缓冲帧、自动隐藏的 HUD）
//   - GalleryScene: 区域预报图和折页的缩略图网格
//   - ImageViewerScene: 单张图片的全屏查看覆盖层
package scenes

import (
	"context"
	"log/slog"
	"time"

	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/frames"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/player"
)

// Env 场景共享的依赖
type Env struct {
	Ctx       context.Context
	Config    *config.AppConfig
	Rates     []player.Rate
	Fetcher   frames.Fetcher
	Resources *game.ResourceManager
	Scenes    *game.SceneManager
	Settings  *game.SettingsManager
	Logger    *slog.Logger
}

// seconds 把场景的 deltaTime（秒）转换成 time.Duration
func seconds(dt float64) time.Duration {
	return time.Duration(dt * float64(time.Second))
}

// rateLabels 返回速率标签
func rateLabels(rates []player.Rate) []string {
	labels := make([]string, len(rates))
	for i, r := range rates {
		labels[i] = r.Label
	}
	return labels
}
