// frameprobe 预加载一个数据集的全部帧并报告失败的帧
//
// 用法：
//
//	go run ./cmd/frameprobe                      # 默认数据集，终端进度界面
//	go run ./cmd/frameprobe sam-pacifico --plain # 逐批输出文本
//	go run ./cmd/frameprobe --base-url http://localhost:8080
//
// 有帧失败时退出码为 1。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/decker502/marejadas/data"
	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/embedded"
	"github.com/decker502/marejadas/pkg/frames"
)

// ErrFramesFailed 至少一帧无法获取
var ErrFramesFailed = errors.New("some frames failed to load")

var (
	flagConfig    string
	flagBaseURL   string
	flagBatchSize int
	flagPlain     bool
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "frameprobe [dataset|gallery]",
	Short: "frameprobe preloads a forecast dataset and reports unavailable frames",
	Long: `frameprobe fetches every frame of a dataset (or every image of a gallery) in
batches, exactly as the app preloads it, and prints a summary of the frames that
could not be loaded.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return run(cmd.Context(), id, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "application config file (default: embedded data/app.yaml)")
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "replace the frame server scheme and host (env MAREJADAS_BASE_URL)")
	rootCmd.Flags().IntVarP(&flagBatchSize, "batch-size", "b", 0, "frames fetched concurrently (default from config)")
	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "print one line per batch instead of the progress view")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func run(ctx context.Context, datasetID string, out io.Writer) error {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.TimeOnly}))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to read .env", "err", err)
	}

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	baseURL := flagBaseURL
	if baseURL == "" {
		baseURL = os.Getenv("MAREJADAS_BASE_URL")
	}
	cfg.ApplyBaseURL(baseURL)

	name, seq, err := resolveTarget(cfg, datasetID)
	if err != nil {
		return err
	}

	opts := frames.PreloadOptions{
		BatchSize:    cfg.Preload.BatchSize,
		FrameTimeout: cfg.Preload.FrameTimeout,
		Logger:       logger,
	}
	if flagBatchSize > 0 {
		opts.BatchSize = flagBatchSize
	}

	var result probeResult
	if flagPlain {
		result, err = runPlain(ctx, out, name, seq, frames.NewHTTPFetcher(), opts)
	} else {
		result, err = runTUI(ctx, name, seq, frames.NewHTTPFetcher(), opts)
	}
	if err != nil {
		return err
	}

	writeSummary(out, result)
	if len(result.Failed) > 0 {
		return ErrFramesFailed
	}
	return nil
}

// loadConfig 读取 path，为空时读取内嵌的 data/app.yaml（与播放器相同）
func loadConfig(path string) (*config.AppConfig, error) {
	embedded.Init(data.FS)
	if path == "" {
		path = config.DefaultConfigPath
	}
	return config.Load(path)
}

// resolveTarget 按 id 查找数据集或图集，id 为空时取第一个数据集
func resolveTarget(cfg *config.AppConfig, id string) (string, frames.Sequence, error) {
	dataset := cfg.Dataset(id)
	if id == "" || dataset.ID == id {
		seq, err := dataset.Sequence()
		return dataset.Name, seq, err
	}
	if g, ok := cfg.Gallery(id); ok {
		seq, err := g.Sequence()
		return g.Name, seq, err
	}
	return "", frames.Sequence{}, fmt.Errorf("unknown dataset or gallery %q", id)
}

// runTUI 在 bubbletea 界面中预加载，q / ctrl+c 中止
func runTUI(ctx context.Context, name string, seq frames.Sequence, fetcher frames.Fetcher, opts frames.PreloadOptions) (probeResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newProbeModel(name, seq.Count(), cancel))
	opts.OnProgress = func(p frames.Progress) {
		program.Send(progressMsg(p))
	}

	go func() {
		result, err := probe(ctx, seq, fetcher, opts)
		program.Send(doneMsg{result: result, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return probeResult{}, fmt.Errorf("progress view: %w", err)
	}
	m := final.(probeModel)
	if m.aborted {
		return probeResult{}, context.Canceled
	}
	return m.result, m.err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
