package logging

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRedisLogger 把 zap 适配成 redigo LoggingConn 需要的 *log.Logger，按 debug 级别输出
func NewRedisLogger(l *zap.Logger) *log.Logger {
	std, err := zap.NewStdLogAt(l.Named("redis"), zapcore.DebugLevel)
	if err != nil {
		return zap.NewStdLog(l.Named("redis"))
	}
	return std
}
