package repository

import (
	"sync"
	"time"

	"shorturl-go/internal/model"
)

// Summary 内存数据的汇总信息，供定时统计任务使用
type Summary struct {
	Entries     int
	Expired     int
	TotalClicks int
}

// MemoryStore 由服务实例持有的内存状态，一把读写锁同时保护 Registry 和 Ledger
type MemoryStore struct {
	mu       sync.RWMutex
	registry *Registry
	ledger   *Ledger
}

// NewMemoryStore 创建独立的内存存储，进程重启后数据不保留
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		registry: NewRegistry(),
		ledger:   NewLedger(),
	}
}

// Create 原子地检查并写入短码，同时初始化点击序列
func (s *MemoryStore) Create(code, targetURL string, createdAt time.Time, validityMinutes int) (model.ShortCodeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.registry.Create(code, targetURL, createdAt, validityMinutes)
	if err != nil {
		return model.ShortCodeEntry{}, err
	}
	s.ledger.Initialize(code)
	return entry, nil
}

// Get 查询短码记录
func (s *MemoryStore) Get(code string) (model.ShortCodeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.Get(code)
}

// RecordClick 追加点击记录
func (s *MemoryStore) RecordClick(code string, event model.ClickEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Append(code, event)
}

// Snapshot 在同一把读锁下读取记录和点击序列
func (s *MemoryStore) Snapshot(code string) (model.ShortCodeEntry, []model.ClickEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := s.registry.Get(code)
	if err != nil {
		return model.ShortCodeEntry{}, nil, err
	}
	return entry, s.ledger.List(code), nil
}

// Codes 返回全部短码，顺序不固定
func (s *MemoryStore) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, s.registry.Len())
	s.registry.Each(func(entry model.ShortCodeEntry) {
		codes = append(codes, entry.Code)
	})
	return codes
}

// Summary 统计记录数、已过期数和总点击数
func (s *MemoryStore) Summary(now time.Time) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := Summary{Entries: s.registry.Len()}
	s.registry.Each(func(entry model.ShortCodeEntry) {
		if entry.IsExpired(now) {
			summary.Expired++
		}
		summary.TotalClicks += s.ledger.Count(entry.Code)
	})
	return summary
}
