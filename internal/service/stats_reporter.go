package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shorturl-go/internal/repository"
	"shorturl-go/pkg/logging"
	"shorturl-go/pkg/logsink"
)

// SummaryProvider 提供当前存储的汇总数据和短码列表
type SummaryProvider interface {
	Summary(now time.Time) repository.Summary
	Codes() []string
}

// MirrorReader 读取 Redis 中的 PV/UV，*ClickMirror 满足该接口
type MirrorReader interface {
	Stats(code string, day time.Time) (MirrorStats, error)
}

// StatsReport 一次统计的结果，Mirror 为所有短码 Redis 统计之和
type StatsReport struct {
	repository.Summary
	Mirror MirrorStats
}

type ReporterOption func(*StatsReporter)

// WithMirror 同时汇总 Redis 中的 PV/UV
func WithMirror(m MirrorReader) ReporterOption {
	return func(r *StatsReporter) {
		r.mirror = m
	}
}

// StatsReporter 定时输出短码数量、过期数量和总点击数
type StatsReporter struct {
	source   SummaryProvider
	mirror   MirrorReader
	notifier Notifier
	now      func() time.Time
	cron     *cron.Cron
}

func NewStatsReporter(source SummaryProvider, notifier Notifier, opts ...ReporterOption) *StatsReporter {
	if notifier == nil {
		notifier = logsink.Discard{}
	}
	r := &StatsReporter{
		source:   source,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report 执行一次统计
func (r *StatsReporter) Report() StatsReport {
	logging.Logger.Info("StatisticalData start")
	now := r.now()
	report := StatsReport{Summary: r.source.Summary(now)}

	message := fmt.Sprintf("Stats: %d entries, %d expired, %d clicks",
		report.Entries, report.Expired, report.TotalClicks)
	if r.mirror != nil {
		report.Mirror = r.collectMirror(now)
		message += fmt.Sprintf("; today %d pv, %d uv", report.Mirror.DailyPV, report.Mirror.DailyUV)
	}

	logging.Logger.Info("StatisticalData end",
		zap.Int("entries", report.Entries),
		zap.Int("expired", report.Expired),
		zap.Int("total_clicks", report.TotalClicks),
		zap.Int64("daily_pv", report.Mirror.DailyPV),
		zap.Int64("daily_uv", report.Mirror.DailyUV),
		zap.Int64("total_pv", report.Mirror.TotalPV),
		zap.Int64("total_uv", report.Mirror.TotalUV),
	)
	r.notifier.Notify(logsink.LevelInfo, logsink.PackageCronJob, message)
	return report
}

// collectMirror 逐个短码读取 Redis 统计，读取失败的短码跳过
func (r *StatsReporter) collectMirror(now time.Time) MirrorStats {
	var total MirrorStats
	for _, code := range r.source.Codes() {
		stats, err := r.mirror.Stats(code, now)
		if err != nil {
			logging.Logger.Warn("#doStatisticalData | Skipping mirror stats for shortcode",
				zap.String("shortcode", code),
				zap.Error(err),
			)
			continue
		}
		logging.Logger.Debug("Mirror stats",
			zap.String("shortcode", code),
			zap.Int64("daily_pv", stats.DailyPV),
			zap.Int64("daily_uv", stats.DailyUV),
			zap.Int64("total_pv", stats.TotalPV),
			zap.Int64("total_uv", stats.TotalUV),
		)
		total.DailyPV += stats.DailyPV
		total.DailyUV += stats.DailyUV
		total.TotalPV += stats.TotalPV
		total.TotalUV += stats.TotalUV
	}
	return total
}

// Start 按 cron 表达式定时执行 Report
func (r *StatsReporter) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.Report() }); err != nil {
		return err
	}
	r.cron = c
	c.Start()
	logging.Logger.Info("Stats reporter scheduled", zap.String("cron", spec))
	return nil
}

// Stop 停止定时任务，等待正在执行的任务结束
func (r *StatsReporter) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
