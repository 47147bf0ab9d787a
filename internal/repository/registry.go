package repository

import (
	"errors"
	"time"

	"shorturl-go/internal/model"
)

var (
	ErrCodeTaken = errors.New("shortcode already exists")
	ErrNotFound  = errors.New("shortcode not found")
)

// Registry 短码到目标地址的映射，跳转解析的唯一数据来源
//
// Registry 本身不加锁，并发访问由 MemoryStore 统一保护。
type Registry struct {
	entries map[string]model.ShortCodeEntry
}

// NewRegistry 创建空的 Registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]model.ShortCodeEntry)}
}

// Create 短码不存在时写入，已存在返回 ErrCodeTaken
func (r *Registry) Create(code, targetURL string, createdAt time.Time, validityMinutes int) (model.ShortCodeEntry, error) {
	if _, exists := r.entries[code]; exists {
		return model.ShortCodeEntry{}, ErrCodeTaken
	}
	entry := model.NewShortCodeEntry(code, targetURL, createdAt, validityMinutes)
	r.entries[code] = entry
	return entry, nil
}

// Get 纯查询，不判断是否过期
func (r *Registry) Get(code string) (model.ShortCodeEntry, error) {
	entry, ok := r.entries[code]
	if !ok {
		return model.ShortCodeEntry{}, ErrNotFound
	}
	return entry, nil
}

// Len 当前记录数
func (r *Registry) Len() int {
	return len(r.entries)
}

// Each 遍历所有记录
func (r *Registry) Each(fn func(entry model.ShortCodeEntry)) {
	for _, entry := range r.entries {
		fn(entry)
	}
}
