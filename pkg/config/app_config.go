package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/marejadas/pkg/embedded"
	"github.com/decker502/marejadas/pkg/frames"
	"github.com/decker502/marejadas/pkg/player"
)

// DefaultConfigPath 内嵌的默认应用配置
const DefaultConfigPath = "data/app.yaml"

// AppConfig 应用配置（data/app.yaml）
//
// 结构：
//
//	window:   {width, height, title}
//	preload:  {batch_size, frame_timeout}
//	playback: {default_rate_ms, hud_hide_delay, rates: [{ms, label}]}
//	datasets: [{id, name, frames, url_template}]
//	galleries: [{id, name, lat, lon, images: [{label, url}]}]
type AppConfig struct {
	Window    WindowConfig    `yaml:"window"`
	Preload   PreloadConfig   `yaml:"preload"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Datasets  []DatasetConfig `yaml:"datasets"`
	Galleries []GalleryConfig `yaml:"galleries"`
}

// WindowConfig 桌面窗口配置
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// PreloadConfig 预加载配置
type PreloadConfig struct {
	BatchSize    int           `yaml:"batch_size"`    // 每批并发帧数
	FrameTimeout time.Duration `yaml:"frame_timeout"` // 单帧超时，如 "15s"
}

// RateConfig 一档速率
type RateConfig struct {
	Millis int    `yaml:"ms"`
	Label  string `yaml:"label"`
}

// PlaybackConfig 播放配置
type PlaybackConfig struct {
	DefaultRateMillis int           `yaml:"default_rate_ms"`
	HUDHideDelay      time.Duration `yaml:"hud_hide_delay"`
	Rates             []RateConfig  `yaml:"rates"`
}

// DatasetConfig 一组预报动画帧
type DatasetConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Frames      int    `yaml:"frames"`
	URLTemplate string `yaml:"url_template"`
}

// Sequence 构建该数据集的帧序列
func (d DatasetConfig) Sequence() (frames.Sequence, error) {
	seq, err := frames.NewSequence(d.Frames, d.URLTemplate)
	if err != nil {
		return frames.Sequence{}, fmt.Errorf("dataset %s: %w", d.ID, err)
	}
	return seq, nil
}

// ImageConfig 图集中的一张静态图片
type ImageConfig struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// GalleryConfig 静态图集：一个区域的预报图或一份折页
// 区域带坐标，折页不带
type GalleryConfig struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Lat    *float64      `yaml:"lat"`
	Lon    *float64      `yaml:"lon"`
	Images []ImageConfig `yaml:"images"`
}

// Sequence 按图片顺序构建地址列表序列
func (g GalleryConfig) Sequence() (frames.Sequence, error) {
	urls := make([]string, len(g.Images))
	for i, img := range g.Images {
		urls[i] = img.URL
	}
	seq, err := frames.NewImageList(urls)
	if err != nil {
		return frames.Sequence{}, fmt.Errorf("gallery %s: %w", g.ID, err)
	}
	return seq, nil
}

// Label 返回第 i 张图片（1 起始）的标题，未配置时为 "Imagen i"
func (g GalleryConfig) Label(i int) string {
	if i >= 1 && i <= len(g.Images) && g.Images[i-1].Label != "" {
		return g.Images[i-1].Label
	}
	return fmt.Sprintf("Imagen %d", i)
}

// Coordinates 返回 "Lat: x° | Lon: y°"，没有坐标时为空串
func (g GalleryConfig) Coordinates() string {
	if g.Lat == nil || g.Lon == nil {
		return ""
	}
	return fmt.Sprintf("Lat: %g° | Lon: %g°", *g.Lat, *g.Lon)
}

// Default 返回内置默认配置（与原 App 一致：61 帧，批大小 5，1x = 200ms）
func Default() *AppConfig {
	cfg := &AppConfig{
		Datasets: []DatasetConfig{
			{
				ID:          "sam-pacifico",
				Name:        "Pacífico (SAM)",
				Frames:      61,
				URLTemplate: "https://marejadas.uv.cl/images/SAM/pacifico/Campo{index}.png",
			},
		},
	}
	applyAppDefaults(cfg)
	return cfg
}

// Load 加载应用配置
// 以 "data/" 开头的路径从内嵌资源读取，否则从磁盘读取
func Load(path string) (*AppConfig, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(path, "data/") && embedded.IsInitialized() {
		data, err = embedded.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read app config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid app config in %s: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析 YAML 配置、补默认值并校验
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config YAML: %w", err)
	}
	applyAppDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyAppDefaults 为缺失的可选字段设置默认值
func applyAppDefaults(cfg *AppConfig) {
	if cfg.Window.Width == 0 {
		cfg.Window.Width = ScreenWidth
	}
	if cfg.Window.Height == 0 {
		cfg.Window.Height = ScreenHeight
	}
	if cfg.Window.Title == "" {
		cfg.Window.Title = "Marejadas UV"
	}

	if cfg.Preload.BatchSize == 0 {
		cfg.Preload.BatchSize = frames.DefaultBatchSize
	}
	if cfg.Preload.FrameTimeout == 0 {
		cfg.Preload.FrameTimeout = frames.DefaultFrameTimeout
	}

	if len(cfg.Playback.Rates) == 0 {
		for _, r := range player.DefaultRates {
			cfg.Playback.Rates = append(cfg.Playback.Rates, RateConfig{
				Millis: int(r.Interval.Milliseconds()),
				Label:  r.Label,
			})
		}
	}
	if cfg.Playback.DefaultRateMillis == 0 {
		cfg.Playback.DefaultRateMillis = int(player.DefaultInterval.Milliseconds())
	}
	if cfg.Playback.HUDHideDelay == 0 {
		cfg.Playback.HUDHideDelay = player.DefaultHUDHideDelay
	}
}

// Validate 校验配置完整性
func (cfg *AppConfig) Validate() error {
	if cfg.Preload.BatchSize < 1 {
		return fmt.Errorf("preload.batch_size must be >= 1, got %d", cfg.Preload.BatchSize)
	}
	if cfg.Preload.FrameTimeout < 0 {
		return fmt.Errorf("preload.frame_timeout must not be negative")
	}
	if cfg.Playback.DefaultRateMillis < 1 {
		return fmt.Errorf("playback.default_rate_ms must be >= 1, got %d", cfg.Playback.DefaultRateMillis)
	}
	if _, err := cfg.Rates(); err != nil {
		return err
	}

	if len(cfg.Datasets) == 0 {
		return fmt.Errorf("at least one dataset is required")
	}
	seen := make(map[string]bool, len(cfg.Datasets))
	for i, d := range cfg.Datasets {
		if d.ID == "" {
			return fmt.Errorf("datasets[%d]: id is required", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("datasets[%d]: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = true
		if _, err := d.Sequence(); err != nil {
			return err
		}
	}

	seen = make(map[string]bool, len(cfg.Galleries))
	for i, g := range cfg.Galleries {
		if g.ID == "" {
			return fmt.Errorf("galleries[%d]: id is required", i)
		}
		if seen[g.ID] {
			return fmt.Errorf("galleries[%d]: duplicate id %q", i, g.ID)
		}
		seen[g.ID] = true
		if (g.Lat == nil) != (g.Lon == nil) {
			return fmt.Errorf("gallery %s: lat and lon must be set together", g.ID)
		}
		if _, err := g.Sequence(); err != nil {
			return err
		}
	}
	return nil
}

// Gallery 按 id 查找图集
func (cfg *AppConfig) Gallery(id string) (GalleryConfig, bool) {
	for _, g := range cfg.Galleries {
		if g.ID == id {
			return g, true
		}
	}
	return GalleryConfig{}, false
}

// Rates 返回速率档位列表
func (cfg *AppConfig) Rates() ([]player.Rate, error) {
	rates := make([]player.Rate, 0, len(cfg.Playback.Rates))
	for i, rc := range cfg.Playback.Rates {
		r, err := player.RateFromMillis(rc.Millis, rc.Label)
		if err != nil {
			return nil, fmt.Errorf("playback.rates[%d]: %w", i, err)
		}
		rates = append(rates, r)
	}
	return rates, nil
}

// DefaultInterval 返回默认每帧停留时间
func (cfg *AppConfig) DefaultInterval() time.Duration {
	return time.Duration(cfg.Playback.DefaultRateMillis) * time.Millisecond
}

// Dataset 按 ID 查找数据集，id 为空或找不到时返回第一个
func (cfg *AppConfig) Dataset(id string) DatasetConfig {
	for _, d := range cfg.Datasets {
		if d.ID == id {
			return d
		}
	}
	return cfg.Datasets[0]
}

// PlayerOptions 把配置转换成播放器参数
func (cfg *AppConfig) PlayerOptions() player.Options {
	return player.Options{
		BatchSize:    cfg.Preload.BatchSize,
		FrameTimeout: cfg.Preload.FrameTimeout,
		Interval:     cfg.DefaultInterval(),
		HUDHideDelay: cfg.Playback.HUDHideDelay,
	}
}

// ApplyBaseURL 用 base（如 "http://localhost:8080"）替换每个数据集模板
// 和图集图片地址的协议和主机部分，用于离线镜像或测试服务器
func (cfg *AppConfig) ApplyBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return
	}
	for i, d := range cfg.Datasets {
		cfg.Datasets[i].URLTemplate = base + templatePath(d.URLTemplate)
	}
	for _, g := range cfg.Galleries {
		for j, img := range g.Images {
			g.Images[j].URL = base + templatePath(img.URL)
		}
	}
}

// templatePath 返回模板中主机之后的路径部分
func templatePath(template string) string {
	rest := template
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[idx:]
	}
	return "/"
}
