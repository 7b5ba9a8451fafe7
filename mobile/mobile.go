//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 手动构建：
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg cl.uv.marejadas -o build/android/marejadas.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Marejadas.xcframework -v ./mobile
package mobile

import (
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2/mobile"
	"github.com/lmittmann/tint"

	"github.com/decker502/marejadas/data"
	"github.com/decker502/marejadas/pkg/app"
	"github.com/decker502/marejadas/pkg/embedded"
)

func init() {
	embedded.Init(data.FS)

	// 移动端没有终端，tint 不输出颜色
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   slog.LevelInfo,
		NoColor: true,
	}))
	slog.SetDefault(logger)

	marejadas, err := app.NewApp(app.Config{Logger: logger})
	if err != nil {
		logger.Error("初始化失败", "err", err)
		panic(err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(marejadas)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
