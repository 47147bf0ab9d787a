package repository

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shorturl-go/pkg/logging"
)

// RedisOptions Redis 连接参数
type RedisOptions struct {
	Addr      string
	Password  string
	MaxActive int // 连接数上限，<= 0 时为 16
}

// NewRedisPool 创建 Redis 连接池，连接在首次使用时建立
func NewRedisPool(opts RedisOptions, logger *zap.Logger) *redis.Pool {
	addr := opts.Addr
	password := opts.Password
	maxActive := opts.MaxActive
	if maxActive <= 0 {
		maxActive = 16
	}

	return &redis.Pool{
		MaxIdle:     10,
		MaxActive:   maxActive,
		Wait:        true, // 连接用尽时等待，而不是继续拨号
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			conn, err := redis.Dial("tcp", addr,
				redis.DialConnectTimeout(2*time.Second),
				redis.DialReadTimeout(time.Second),
				redis.DialWriteTimeout(time.Second),
			)
			if err != nil {
				logger.Error("Failed to connect Redis",
					zap.String("addr", addr),
					zap.Error(err),
				)
				return nil, err
			}

			// 如果设置了密码，执行 AUTH
			if password != "" {
				if _, authErr := conn.Do("AUTH", password); authErr != nil {
					if closeErr := conn.Close(); closeErr != nil {
						logger.Error("Failed to close redis connection after AUTH failure",
							zap.String("addr", addr),
							zap.Error(closeErr),
						)
					}
					logger.Error("Redis AUTH failed",
						zap.String("addr", addr),
						zap.Error(authErr),
					)
					return nil, authErr
				}
			}

			logger.Debug("Redis connection established",
				zap.String("addr", addr),
				zap.Bool("auth", password != ""),
			)

			// debug 级别下记录每条命令
			if logger.Core().Enabled(zap.DebugLevel) {
				return redis.NewLoggingConn(conn, logging.NewRedisLogger(logger), "redis"), nil
			}
			return conn, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) > time.Minute {
				_, err := c.Do("PING")
				if err != nil {
					logger.Warn("Redis connection health check failed",
						zap.String("addr", addr),
						zap.Error(err),
					)
				}
				return err
			}
			return nil
		},
	}
}
