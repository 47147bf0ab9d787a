package service

import (
	"context"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shorturl-go/constant"
	"shorturl-go/internal/model"
	"shorturl-go/pkg/logging"
)

// ConnGetter 获取 Redis 连接，*redis.Pool 满足该接口
type ConnGetter interface {
	Get() redis.Conn
}

// ClickMirrorOptions 异步写入参数
type ClickMirrorOptions struct {
	QueueSize int
	Workers   int
}

type mirroredClick struct {
	code  string
	event model.ClickEvent
}

// ClickMirror 将点击同步到 Redis，统计每日/总 PV 和 UV
//
// Record 只把点击放入有界队列，由固定数量的 worker 写入；队列满时丢弃。
type ClickMirror struct {
	pool ConnGetter

	mu     sync.RWMutex
	closed bool
	queue  chan mirroredClick
	wg     sync.WaitGroup
}

func NewClickMirror(pool ConnGetter, opts ClickMirrorOptions) *ClickMirror {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	m := &ClickMirror{
		pool:  pool,
		queue: make(chan mirroredClick, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Record 异步记录一次点击，不阻塞调用方
func (m *ClickMirror) Record(code string, event model.ClickEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- mirroredClick{code: code, event: event}:
	default:
		logging.Logger.Debug("Click mirror queue full, dropping click", zap.String("short_code", code))
	}
}

// Close 停止接收新的点击，等待队列写完或 ctx 结束
func (m *ClickMirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *ClickMirror) worker() {
	defer m.wg.Done()
	for click := range m.queue {
		m.RecordSync(click.code, click.event)
	}
}

// RecordSync 同步记录一次点击
func (m *ClickMirror) RecordSync(code string, event model.ClickEvent) {
	conn := m.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
				zap.String("connection_type", "redis"),
			)
		}
	}()

	date := constant.GetDateKey(event.Timestamp)
	RecordDailyPV(conn, code, date)
	RecordDailyUV(conn, code, date, event.SourceAddress)
	RecordTotalPV(conn, code)
	RecordTotalUV(conn, code, event.SourceAddress)
}

// MirrorStats 单个短码在 Redis 中的统计
type MirrorStats struct {
	DailyPV int64
	DailyUV int64
	TotalPV int64
	TotalUV int64
}

// Stats 读取短码在某一天的统计，缺失的键记为 0
func (m *ClickMirror) Stats(code string, day time.Time) (MirrorStats, error) {
	conn := m.pool.Get()
	defer conn.Close()

	date := constant.GetDateKey(day)
	var (
		stats MirrorStats
		err   error
	)
	if stats.DailyPV, err = GetDailyPv(conn, code, date); err != nil {
		return MirrorStats{}, err
	}
	if stats.DailyUV, err = GetDailyUv(conn, code, date); err != nil {
		return MirrorStats{}, err
	}
	if stats.TotalPV, err = GetTotalPv(conn, code); err != nil {
		return MirrorStats{}, err
	}
	if stats.TotalUV, err = GetTotalUv(conn, code); err != nil {
		return MirrorStats{}, err
	}
	return stats, nil
}

// RecordDailyPV 记录每日 PV
func RecordDailyPV(conn redis.Conn, shortCode, date string) {
	dailyPvKey := constant.GetDailyPVKey(date)

	if _, err := conn.Do("HINCRBY", dailyPvKey, shortCode, 1); err != nil {
		logging.Logger.Error("Failed to record daily PV",
			zap.String("key", dailyPvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
		return
	}

	if _, err := conn.Do("EXPIRE", dailyPvKey, constant.DailyKeyTTL); err != nil {
		logging.Logger.Error("Failed to record daily PV Expire",
			zap.String("key", dailyPvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// RecordDailyUV 记录每日 UV
func RecordDailyUV(conn redis.Conn, shortCode, date, ip string) {
	dailyUvKey := constant.GetDailyUVKey(shortCode, date)

	if _, err := conn.Do("PFADD", dailyUvKey, ip); err != nil {
		logging.Logger.Error("Failed to record daily UV",
			zap.String("key", dailyUvKey),
			zap.String("ip", ip),
			zap.Error(err))
		return
	}

	if _, err := conn.Do("EXPIRE", dailyUvKey, constant.DailyKeyTTL); err != nil {
		logging.Logger.Error("Failed to record daily UV Expire",
			zap.String("key", dailyUvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// RecordTotalPV 记录总 PV
func RecordTotalPV(conn redis.Conn, shortCode string) {
	totalPvKey := constant.GetTotalPVKey(shortCode)
	if _, err := conn.Do("INCR", totalPvKey); err != nil {
		logging.Logger.Error("Failed to record total PV",
			zap.String("key", totalPvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// RecordTotalUV 记录总UV
func RecordTotalUV(conn redis.Conn, shortCode, ip string) {
	totalUvKey := constant.GetTotalUVKey(shortCode)
	if _, err := conn.Do("PFADD", totalUvKey, ip); err != nil {
		logging.Logger.Error("Failed to record total UV",
			zap.String("key", totalUvKey),
			zap.String("ip", ip),
			zap.Error(err))
	}
}

// int64Reply 转换计数类回复，键不存在时返回 0
func int64Reply(key, shortCode string, reply interface{}, err error) (int64, error) {
	result, err := redis.Int64(reply, err)
	if err == redis.ErrNil {
		return 0, nil
	}
	if err != nil {
		logging.Logger.Error("Failed to read counter",
			zap.String("key", key),
			zap.String("short_code", shortCode),
			zap.Error(err))
		return 0, err
	}
	return result, nil
}

// GetDailyPv 获取某日期的短链接访问量（PV）
func GetDailyPv(conn redis.Conn, shortCode, date string) (int64, error) {
	dailyPvKey := constant.GetDailyPVKey(date)
	reply, err := conn.Do("HGET", dailyPvKey, shortCode)
	return int64Reply(dailyPvKey, shortCode, reply, err)
}

// GetDailyUv 获取某日期的短链接独立访客数（UV）
func GetDailyUv(conn redis.Conn, shortCode, date string) (int64, error) {
	dailyUvKey := constant.GetDailyUVKey(shortCode, date)
	reply, err := conn.Do("PFCOUNT", dailyUvKey)
	return int64Reply(dailyUvKey, shortCode, reply, err)
}

// GetTotalPv 获取短链接的总访问量（PV）
func GetTotalPv(conn redis.Conn, shortCode string) (int64, error) {
	totalPvKey := constant.GetTotalPVKey(shortCode)
	reply, err := conn.Do("GET", totalPvKey)
	return int64Reply(totalPvKey, shortCode, reply, err)
}

// GetTotalUv 获取短链接的总独立访客数（UV）
func GetTotalUv(conn redis.Conn, shortCode string) (int64, error) {
	totalUvKey := constant.GetTotalUVKey(shortCode)
	reply, err := conn.Do("PFCOUNT", totalUvKey)
	return int64Reply(totalUvKey, shortCode, reply, err)
}
