package game

import (
	"fmt"
	"log/slog"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// Preferences 用户偏好
// 只保存界面选择，不保存播放状态（每次进入播放器都从第 1 帧、暂停开始）
type Preferences struct {
	LastDataset string `yaml:"lastDataset"` // 上次打开的数据集 ID
	Fullscreen  bool   `yaml:"fullscreen"`  // 启动时窗口是否全屏
}

// DefaultPreferences 返回默认偏好
func DefaultPreferences() *Preferences {
	return &Preferences{}
}

// SettingsManager 偏好管理器
// 负责偏好的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	prefs        *Preferences
	logger       *slog.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "preferences"
)

// NewSettingsManager 创建偏好管理器
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，仅内存）
//   - logger: 可为 nil，使用 slog.Default()
//
// 加载失败不是致命错误，会记录警告并使用默认值
func NewSettingsManager(gdataManager *gdata.Manager, logger *slog.Logger) *SettingsManager {
	if logger == nil {
		logger = slog.Default()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		prefs:        DefaultPreferences(),
		logger:       logger.With("component", "settings"),
	}

	if err := sm.Load(); err != nil {
		sm.logger.Warn("failed to load preferences, using defaults", "err", err)
	}
	return sm
}

// Persistent 返回偏好是否能持久化
func (sm *SettingsManager) Persistent() bool {
	return sm.gdataManager != nil
}

// Load 从 gdata 加载偏好
// gdataManager 为 nil 或尚无存档时使用默认值
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.prefs = DefaultPreferences()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.prefs = DefaultPreferences()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.prefs = DefaultPreferences()
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	var loaded Preferences
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.prefs = DefaultPreferences()
		return fmt.Errorf("failed to unmarshal preferences: %w", err)
	}

	sm.prefs = &loaded
	sm.logger.Debug("preferences loaded", "last_dataset", loaded.LastDataset)
	return nil
}

// Save 保存偏好到 gdata
// 降级模式下直接返回 nil
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Preferences 返回当前偏好
func (sm *SettingsManager) Preferences() *Preferences {
	return sm.prefs
}

// SetLastDataset 记录最近打开的数据集（仅内存，需 Save 持久化）
func (sm *SettingsManager) SetLastDataset(id string) {
	sm.prefs.LastDataset = id
}

// SetFullscreen 设置启动时是否全屏（仅内存，需 Save 持久化）
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.prefs.Fullscreen = enabled
}
