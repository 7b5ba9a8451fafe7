package frames

import (
	"image"
	"sort"
	"sync"
)

// Entry 是预加载缓存中的一项
//
// 加载失败的帧仍然记录名义 URL，播放照常进行。
type Entry struct {
	Index int
	URL   string
	Image image.Image // 解码后的图片，失败时为 nil
	Err   error       // 获取或解码失败的原因
}

// OK 判断该帧是否已成功加载
func (e Entry) OK() bool {
	return e.Err == nil && e.Image != nil
}

// Cache 帧索引 -> 预加载结果
//
// 预加载协程写入，游戏循环读取，因此用读写锁保护。
type Cache struct {
	mu      sync.RWMutex
	entries map[int]Entry
}

// NewCache 创建空缓存
func NewCache() *Cache {
	return &Cache{entries: make(map[int]Entry)}
}

// Record 写入一帧的结果（成功或失败都算“已尝试”）
func (c *Cache) Record(e Entry) {
	c.mu.Lock()
	c.entries[e.Index] = e
	c.mu.Unlock()
}

// Get 返回第 i 帧的记录
func (c *Cache) Get(i int) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[i]
	return e, ok
}

// Settled 判断第 i 帧是否已尝试过加载
func (c *Cache) Settled(i int) bool {
	_, ok := c.Get(i)
	return ok
}

// Len 返回已尝试的帧数
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Failed 返回加载失败的帧，按索引升序
func (c *Cache) Failed() []Entry {
	c.mu.RLock()
	var failed []Entry
	for _, e := range c.entries {
		if !e.OK() {
			failed = append(failed, e)
		}
	}
	c.mu.RUnlock()

	sort.Slice(failed, func(a, b int) bool { return failed[a].Index < failed[b].Index })
	return failed
}
