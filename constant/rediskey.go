package constant

import (
	"fmt"
	"time"
)

// 常量定义
const (
	BasePrefix = "shorturl:"
	Separator  = ":"
)

// Redis 键模板
const (
	DailyPV = BasePrefix + "pv" + Separator + "%s"                    // shorturl:pv:yyyyMMdd
	DailyUV = BasePrefix + "uv" + Separator + "%s" + Separator + "%s" // shorturl:uv:yyyyMMdd:shortcode
	TotalPV = BasePrefix + "total_pv" + Separator + "%s"              // shorturl:total_pv:shortcode
	TotalUV = BasePrefix + "total_uv" + Separator + "%s"              // shorturl:total_uv:shortcode
)

// DailyKeyTTL 每日统计键的过期时间（秒）
const DailyKeyTTL = 3 * 24 * 3600

// GetDateKey 生成日期键（格式：yyyyMMdd）
func GetDateKey(t time.Time) string {
	return t.UTC().Format("20060102")
}

// GetDailyPVKey 生成每日 PV 键
func GetDailyPVKey(date string) string {
	return fmt.Sprintf(DailyPV, date)
}

// GetDailyUVKey 生成每日 UV 键
func GetDailyUVKey(shortcode, date string) string {
	return fmt.Sprintf(DailyUV, date, shortcode)
}

// GetTotalUVKey 生成总 UV 键
func GetTotalUVKey(shortcode string) string {
	return fmt.Sprintf(TotalUV, shortcode)
}

// GetTotalPVKey 生成总 PV 键
func GetTotalPVKey(shortcode string) string {
	return fmt.Sprintf(TotalPV, shortcode)
}
