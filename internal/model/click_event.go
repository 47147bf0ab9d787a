package model

import "time"

// ClickEvent 一次成功跳转的访问记录
type ClickEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	Referrer      string    `json:"referrer,omitempty"` // 为空表示请求未携带 Referer
	SourceAddress string    `json:"ip"`
}

// HasReferrer 是否记录了来源页面
func (e ClickEvent) HasReferrer() bool {
	return e.Referrer != ""
}
