package dto

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"shorturl-go/internal/model"
)

// TimeLayout 响应中的时间格式：UTC，毫秒精度
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime 按 TimeLayout 输出 UTC 时间
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// CreateShortURLRequest 创建短链的请求参数
//
// Validity 和 ShortCode 保留原始 JSON，以便区分缺失、null 和非法类型。
type CreateShortURLRequest struct {
	URL       string          `json:"url"`
	Validity  json.RawMessage `json:"validity"`
	ShortCode json.RawMessage `json:"shortcode"`
}

// CreateShortURLResponse 创建成功的响应
type CreateShortURLResponse struct {
	ShortLink string `json:"shortLink"`
	Expiry    string `json:"expiry"`
}

// ClickEventDTO 单次点击
type ClickEventDTO struct {
	Timestamp string  `json:"timestamp"`
	Referrer  *string `json:"referrer"`
	IP        string  `json:"ip"`
}

// StatsResponse 短码统计
type StatsResponse struct {
	URL       string          `json:"url"`
	Created   string          `json:"created"`
	Expiry    string          `json:"expiry"`
	Clicks    int             `json:"clicks"`
	ClickData []ClickEventDTO `json:"clickData"`
}

// NewStatsResponse 由条目和点击记录构造统计响应
func NewStatsResponse(entry model.ShortCodeEntry, clicks []model.ClickEvent) StatsResponse {
	return StatsResponse{
		URL:     entry.TargetURL,
		Created: FormatTime(entry.CreatedAt),
		Expiry:  FormatTime(entry.ExpiresAt),
		Clicks:  len(clicks),
		ClickData: lo.Map(clicks, func(ev model.ClickEvent, _ int) ClickEventDTO {
			var referrer *string
			if ev.HasReferrer() {
				referrer = lo.ToPtr(ev.Referrer)
			}
			return ClickEventDTO{
				Timestamp: FormatTime(ev.Timestamp),
				Referrer:  referrer,
				IP:        ev.SourceAddress,
			}
		}),
	}
}
