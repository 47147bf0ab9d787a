package model

import "time"

// ShortCodeEntry 短码映射记录，创建后不再修改
type ShortCodeEntry struct {
	Code      string    `json:"code"`
	TargetURL string    `json:"targetUrl"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewShortCodeEntry 根据有效期（分钟）构造短码记录
func NewShortCodeEntry(code, targetURL string, createdAt time.Time, validityMinutes int) ShortCodeEntry {
	return ShortCodeEntry{
		Code:      code,
		TargetURL: targetURL,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(time.Duration(validityMinutes) * time.Minute),
	}
}

// IsExpired now 严格晚于过期时间才算过期
func (e ShortCodeEntry) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
