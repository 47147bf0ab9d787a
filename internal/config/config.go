package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"shorturl-go/internal/codegen"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig
	ShortCode ShortCodeConfig
	Log       LogConfig
	LogSink   LogSinkConfig
	Redis     RedisConfig
	Stats     StatsConfig
}

type ServerConfig struct {
	Addr           string
	BaseURL        string   // 为空时根据请求的协议和 Host 拼接短链
	TrustedProxies []string // 为空表示不信任任何代理
}

type ShortCodeConfig struct {
	Length          int
	MaxAttempts     int
	DefaultValidity int // 分钟
}

type LogConfig struct {
	Level      string
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type LogSinkConfig struct {
	Enabled   bool
	Endpoint  string
	Token     string
	Stack     string
	Timeout   time.Duration
	QueueSize int
	Workers   int
}

type RedisConfig struct {
	Addr          string // 为空时不启用点击统计镜像
	Password      string
	MaxActive     int
	MirrorQueue   int
	MirrorWorkers int
}

type StatsConfig struct {
	Enabled bool
	Cron    string
}

const envPrefix = "SHORTURL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("shortcode.length", 6)
	v.SetDefault("shortcode.max_attempts", 16)
	v.SetDefault("shortcode.default_validity", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/shorturl.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("logsink.enabled", true)
	v.SetDefault("logsink.endpoint", "http://20.244.56.144/evaluation-service/logs")
	v.SetDefault("logsink.token", "")
	v.SetDefault("logsink.stack", "backend")
	v.SetDefault("logsink.timeout", 5*time.Second)
	v.SetDefault("logsink.queue_size", 1024)
	v.SetDefault("logsink.workers", 2)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.max_active", 16)
	v.SetDefault("redis.mirror_queue", 1024)
	v.SetDefault("redis.mirror_workers", 4)

	v.SetDefault("stats.enabled", true)
	v.SetDefault("stats.cron", "*/10 * * * *")
}

// Load 读取配置：默认值 < config.yaml < .env < 环境变量
//
// configFile 为空时在当前目录查找 config.yaml，找不到不报错。
func Load(configFile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容日志客户端原有的环境变量名
	if err := v.BindEnv("logsink.token", envPrefix+"_LOGSINK_TOKEN", "LOG_AUTH", "access_token", "ACCESS_TOKEN"); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			BaseURL:        strings.TrimRight(v.GetString("server.base_url"), "/"),
			TrustedProxies: v.GetStringSlice("server.trusted_proxies"),
		},
		ShortCode: ShortCodeConfig{
			Length:          v.GetInt("shortcode.length"),
			MaxAttempts:     v.GetInt("shortcode.max_attempts"),
			DefaultValidity: v.GetInt("shortcode.default_validity"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Path:       v.GetString("log.path"),
			MaxSize:    v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAge:     v.GetInt("log.max_age"),
			Compress:   v.GetBool("log.compress"),
		},
		LogSink: LogSinkConfig{
			Enabled:   v.GetBool("logsink.enabled"),
			Endpoint:  v.GetString("logsink.endpoint"),
			Token:     v.GetString("logsink.token"),
			Stack:     v.GetString("logsink.stack"),
			Timeout:   v.GetDuration("logsink.timeout"),
			QueueSize: v.GetInt("logsink.queue_size"),
			Workers:   v.GetInt("logsink.workers"),
		},
		Redis: RedisConfig{
			Addr:          v.GetString("redis.addr"),
			Password:      v.GetString("redis.password"),
			MaxActive:     v.GetInt("redis.max_active"),
			MirrorQueue:   v.GetInt("redis.mirror_queue"),
			MirrorWorkers: v.GetInt("redis.mirror_workers"),
		},
		Stats: StatsConfig{
			Enabled: v.GetBool("stats.enabled"),
			Cron:    v.GetString("stats.cron"),
		},
	}

	// PORT 优先于 server.addr，便于在容器平台上运行
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Server.Addr = ":" + port
	}

	if cfg.ShortCode.DefaultValidity <= 0 {
		return nil, errors.New("shortcode.default_validity must be positive")
	}
	if cfg.ShortCode.Length < codegen.MinLength || cfg.ShortCode.Length > codegen.MaxLength {
		return nil, fmt.Errorf("shortcode.length must be between %d and %d", codegen.MinLength, codegen.MaxLength)
	}
	return cfg, nil
}

// loadDotEnv 读取 .env 文件写入环境变量，不覆盖已存在的变量
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	// viper 会把键转成小写，这里从原始文件中取回大小写
	for _, key := range dotEnvKeys(path) {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		value := strings.TrimSpace(v.GetString(strings.ToLower(key)))
		value = strings.TrimSuffix(value, ",")
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "<") && strings.HasSuffix(value, ">") {
			value = value[1 : len(value)-1]
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

func dotEnvKeys(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var keys []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		keys = append(keys, strings.TrimSpace(line[:idx]))
	}
	return keys
}
