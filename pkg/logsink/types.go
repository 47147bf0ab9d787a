package logsink

import (
	"errors"
	"fmt"
	"strings"
)

// Stack 日志来源
type Stack string

const (
	StackBackend  Stack = "backend"
	StackFrontend Stack = "frontend"
)

// Level 日志级别
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Package 日志所属模块，只允许固定取值
type Package string

const (
	// backend
	PackageCache      Package = "cache"
	PackageController Package = "controller"
	PackageCronJob    Package = "cron_job"
	PackageDB         Package = "db"
	PackageDomain     Package = "domain"
	PackageHandler    Package = "handler"
	PackageRepository Package = "repository"
	PackageRoute      Package = "route"
	PackageService    Package = "service"
	// frontend
	PackageAPI       Package = "api"
	PackageComponent Package = "component"
	PackageHook      Package = "hook"
	PackagePage      Package = "page"
	PackageState     Package = "state"
	PackageStyle     Package = "style"
	// shared
	PackageAuth       Package = "auth"
	PackageConfig     Package = "config"
	PackageMiddleware Package = "middleware"
	PackageUtils      Package = "utils"
)

var (
	validStacks = map[Stack]bool{StackBackend: true, StackFrontend: true}
	validLevels = map[Level]bool{
		LevelDebug: true, LevelInfo: true, LevelWarn: true, LevelError: true, LevelFatal: true,
	}
	validPackages = map[Package]bool{
		PackageCache: true, PackageController: true, PackageCronJob: true, PackageDB: true,
		PackageDomain: true, PackageHandler: true, PackageRepository: true, PackageRoute: true,
		PackageService: true, PackageAPI: true, PackageComponent: true, PackageHook: true,
		PackagePage: true, PackageState: true, PackageStyle: true, PackageAuth: true,
		PackageConfig: true, PackageMiddleware: true, PackageUtils: true,
	}
)

var (
	ErrInvalidStack   = errors.New("invalid stack")
	ErrInvalidLevel   = errors.New("invalid level")
	ErrInvalidPackage = errors.New("invalid package")
	ErrEmptyMessage   = errors.New("message must be a non-empty string")
)

// Entry 上报的日志内容
type Entry struct {
	Stack   Stack   `json:"stack"`
	Level   Level   `json:"level"`
	Package Package `json:"package"`
	Message string  `json:"message"`
}

// Validate 校验各字段取值
func (e Entry) Validate() error {
	if !validStacks[e.Stack] {
		return fmt.Errorf("%w: %q", ErrInvalidStack, e.Stack)
	}
	if !validLevels[e.Level] {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, e.Level)
	}
	if !validPackages[e.Package] {
		return fmt.Errorf("%w: %q", ErrInvalidPackage, e.Package)
	}
	if strings.TrimSpace(e.Message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// ParseStack 解析配置中的 stack
func ParseStack(s string) (Stack, error) {
	stack := Stack(strings.ToLower(strings.TrimSpace(s)))
	if !validStacks[stack] {
		return "", fmt.Errorf("%w: %q", ErrInvalidStack, s)
	}
	return stack, nil
}

// RequestError 远端返回非 2xx 状态码
type RequestError struct {
	Status int
	Body   map[string]any // 响应体无法解析时为 nil
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}
