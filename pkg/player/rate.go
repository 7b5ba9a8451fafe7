package player

import (
	"fmt"
	"time"
)

// DefaultInterval 默认速率 1x
const DefaultInterval = 200 * time.Millisecond

// Rate 一档播放速率
type Rate struct {
	Interval time.Duration
	Label    string
}

// DefaultRates 0.5x / 1x / 2x
var DefaultRates = []Rate{
	{Interval: 500 * time.Millisecond, Label: "0.5x"},
	{Interval: 200 * time.Millisecond, Label: "1x"},
	{Interval: 100 * time.Millisecond, Label: "2x"},
}

// RateFromMillis 把配置中的毫秒数转换成速率档位，标签按 1x = 200ms 推算
func RateFromMillis(ms int, label string) (Rate, error) {
	if ms <= 0 {
		return Rate{}, fmt.Errorf("rate interval must be > 0ms, got %d", ms)
	}
	if label == "" {
		label = fmt.Sprintf("%gx", float64(DefaultInterval.Milliseconds())/float64(ms))
	}
	return Rate{Interval: time.Duration(ms) * time.Millisecond, Label: label}, nil
}

// IndexOfInterval 返回 interval 在 rates 中的位置，找不到返回 -1
func IndexOfInterval(rates []Rate, interval time.Duration) int {
	for i, r := range rates {
		if r.Interval == interval {
			return i
		}
	}
	return -1
}
