package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/decker502/marejadas/data"
	"github.com/decker502/marejadas/pkg/app"
	"github.com/decker502/marejadas/pkg/embedded"
)

// baseURLEnv 覆盖帧服务器地址的环境变量（可写在 .env 中）
const baseURLEnv = "MAREJADAS_BASE_URL"

var (
	flagConfig  string
	flagDataset string
	flagBaseURL string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "marejadas",
	Short: "marejadas plays the animated ocean forecast maps",
	Long: `marejadas preloads a forecast frame sequence and plays it as an animation,
with frame stepping, scrubbing, playback rates and a fullscreen viewer.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "application config file (default: embedded data/app.yaml)")
	rootCmd.Flags().StringVarP(&flagDataset, "dataset", "d", "", "open this dataset directly instead of the dataset list")
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "replace the frame server scheme and host (env "+baseURLEnv+")")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

func run() error {
	logger := newLogger(flagVerbose)
	slog.SetDefault(logger)

	// .env 可选
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to read .env", "err", err)
	}
	baseURL := flagBaseURL
	if baseURL == "" {
		baseURL = os.Getenv(baseURLEnv)
	}

	embedded.Init(data.FS)

	marejadas, err := app.NewApp(app.Config{
		ConfigPath: flagConfig,
		Dataset:    flagDataset,
		BaseURL:    baseURL,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}

	window := marejadas.WindowConfig()
	ebiten.SetWindowSize(window.Width, window.Height)
	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetFullscreen(marejadas.StartFullscreen())

	if err := ebiten.RunGame(marejadas); err != nil {
		return fmt.Errorf("运行失败: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
