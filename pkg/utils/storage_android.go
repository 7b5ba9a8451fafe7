//go:build android

package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStorageDir 在 gdata 打开之前创建 /data/data/{package}/{appName}
//
// gdata 在 Android 上不会预先创建子目录，偏好写入会失败。
func EnsureStorageDir(appName string) error {
	dir := StoragePath(appName)
	if dir == "" {
		return fmt.Errorf("cannot detect android package name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage dir %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}

// StoragePath 返回偏好数据目录；无法识别包名时为空
func StoragePath(appName string) string {
	pkg, err := androidPackage()
	if err != nil {
		return ""
	}
	return filepath.Join("/data/data", pkg, appName)
}

// androidPackage 从 /proc/self/cmdline 读取包名
func androidPackage() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	name := string(bytes.TrimSpace(data))
	if name == "" {
		return "", fmt.Errorf("empty /proc/self/cmdline")
	}
	return name, nil
}
