// Package data 内嵌默认应用配置
//
// 桌面端、移动端和 cmd 工具都从这里取 app.yaml，
// 通过 embedded.Init(data.FS) 注册。
package data

import "embed"

// FS 以 data/ 目录为根
//
//go:embed app.yaml
var FS embed.FS
