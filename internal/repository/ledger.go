package repository

import "shorturl-go/internal/model"

// Ledger 每个短码的点击记录，只追加不修改
type Ledger struct {
	events map[string][]model.ClickEvent
}

// NewLedger 创建空的 Ledger
func NewLedger() *Ledger {
	return &Ledger{events: make(map[string][]model.ClickEvent)}
}

// Initialize 为短码建立空的点击序列，与 Registry 写入同时发生
func (l *Ledger) Initialize(code string) {
	if _, ok := l.events[code]; ok {
		return
	}
	l.events[code] = []model.ClickEvent{}
}

// Append 追加点击记录，短码未初始化时忽略并返回 false
func (l *Ledger) Append(code string, event model.ClickEvent) bool {
	events, ok := l.events[code]
	if !ok {
		return false
	}
	l.events[code] = append(events, event)
	return true
}

// List 按写入顺序返回点击记录的副本
func (l *Ledger) List(code string) []model.ClickEvent {
	events := l.events[code]
	out := make([]model.ClickEvent, len(events))
	copy(out, events)
	return out
}

// Count 点击次数
func (l *Ledger) Count(code string) int {
	return len(l.events[code])
}
