package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/dto"
	"shorturl-go/internal/model"
	"shorturl-go/internal/repository"
	"shorturl-go/pkg/logging"
	"shorturl-go/pkg/logsink"
	"shorturl-go/pkg/utils"
)

const (
	DefaultValidityMinutes = 30
	DefaultMaxAttempts     = 16
)

// Store 短码与点击记录的存储
type Store interface {
	Create(code, targetURL string, createdAt time.Time, validityMinutes int) (model.ShortCodeEntry, error)
	Get(code string) (model.ShortCodeEntry, error)
	RecordClick(code string, event model.ClickEvent) bool
	Snapshot(code string) (model.ShortCodeEntry, []model.ClickEvent, error)
}

// CodeGenerator 生成候选短码，不保证唯一
type CodeGenerator interface {
	Generate() (string, error)
}

// Notifier 远程日志上报
type Notifier interface {
	Notify(level logsink.Level, pkg logsink.Package, message string)
}

// ClickRecorder 跳转成功后的附加统计
type ClickRecorder interface {
	Record(code string, event model.ClickEvent)
}

// Visit 跳转请求的来源信息
type Visit struct {
	Referrer      string
	SourceAddress string
}

type Option func(*ShortURLService)

// WithClock 替换时间来源，测试中用于模拟过期
func WithClock(now func() time.Time) Option {
	return func(s *ShortURLService) {
		s.now = now
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *ShortURLService) {
		s.notifier = n
	}
}

func WithClickRecorder(r ClickRecorder) Option {
	return func(s *ShortURLService) {
		s.recorder = r
	}
}

// WithDefaultValidity 未指定有效期时使用的分钟数
func WithDefaultValidity(minutes int) Option {
	return func(s *ShortURLService) {
		if minutes > 0 {
			s.defaultValidity = minutes
		}
	}
}

// WithMaxAttempts 自动生成短码时的最大尝试次数
func WithMaxAttempts(n int) Option {
	return func(s *ShortURLService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// ShortURLService 短链创建、统计与跳转
type ShortURLService struct {
	store           Store
	generator       CodeGenerator
	notifier        Notifier
	recorder        ClickRecorder
	now             func() time.Time
	defaultValidity int
	maxAttempts     int
}

func NewShortURLService(store Store, generator CodeGenerator, opts ...Option) *ShortURLService {
	s := &ShortURLService{
		store:           store,
		generator:       generator,
		notifier:        logsink.Discard{},
		now:             time.Now,
		defaultValidity: DefaultValidityMinutes,
		maxAttempts:     DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ShortURLService) fail(appErr *apperrors.AppError, message string) *apperrors.AppError {
	s.notifier.Notify(logsink.LevelError, logsink.PackageService, message)
	return appErr
}

// CreateShortURL 创建短链
//
// 校验顺序：url、validity、shortcode。校验失败不会修改任何状态。
func (s *ShortURLService) CreateShortURL(ctx context.Context, req dto.CreateShortURLRequest) (model.ShortCodeEntry, error) {
	targetURL := strings.TrimSpace(req.URL)
	if err := utils.ValidateTargetURL(targetURL); err != nil {
		return model.ShortCodeEntry{}, s.fail(apperrors.InvalidURL(), "Invalid URL")
	}

	validity, err := utils.ParseValidity(req.Validity, s.defaultValidity)
	if err != nil {
		return model.ShortCodeEntry{}, s.fail(apperrors.InvalidValidity(), "Invalid validity")
	}

	code, err := utils.ParseShortCode(req.ShortCode)
	if err != nil {
		return model.ShortCodeEntry{}, s.fail(apperrors.InvalidShortcodeFormat(), "Invalid shortcode format")
	}

	var entry model.ShortCodeEntry
	if code != "" {
		entry, err = s.createWithCode(code, targetURL, validity)
	} else {
		entry, err = s.createWithGeneratedCode(targetURL, validity)
	}
	if err != nil {
		return model.ShortCodeEntry{}, err
	}

	logging.Logger.Info("Short URL created",
		zap.String("short_code", entry.Code),
		zap.String("target_url", entry.TargetURL),
		zap.Time("expires_at", entry.ExpiresAt),
	)
	s.notifier.Notify(logsink.LevelInfo, logsink.PackageService, "Shortened URL created: "+entry.Code)
	return entry, nil
}

func (s *ShortURLService) createWithCode(code, targetURL string, validity int) (model.ShortCodeEntry, error) {
	if err := utils.ValidateShortCode(code); err != nil {
		return model.ShortCodeEntry{}, s.fail(apperrors.InvalidShortcodeFormat(), "Invalid shortcode format")
	}

	entry, err := s.store.Create(code, targetURL, s.now(), validity)
	if errors.Is(err, repository.ErrCodeTaken) {
		logging.Logger.Info("Short code already exists", zap.String("short_code", code))
		return model.ShortCodeEntry{}, s.fail(apperrors.ShortcodeCollision(), "Shortcode collision")
	}
	if err != nil {
		return model.ShortCodeEntry{}, s.fail(apperrors.SystemError(err), "Failed to create short URL")
	}
	return entry, nil
}

func (s *ShortURLService) createWithGeneratedCode(targetURL string, validity int) (model.ShortCodeEntry, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			logging.Logger.Error("Failed to generate short code", zap.Error(err))
			return model.ShortCodeEntry{}, s.fail(apperrors.SystemError(err), "Failed to generate shortcode")
		}

		entry, err := s.store.Create(code, targetURL, s.now(), validity)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, repository.ErrCodeTaken) {
			return model.ShortCodeEntry{}, s.fail(apperrors.SystemError(err), "Failed to create short URL")
		}
		logging.Logger.Debug("Generated short code collided, retrying",
			zap.String("short_code", code),
			zap.Int("attempt", attempt),
		)
	}

	logging.Logger.Error("Exhausted short code generation attempts", zap.Int("max_attempts", s.maxAttempts))
	return model.ShortCodeEntry{}, s.fail(
		apperrors.SystemError(errors.New("short code generation attempts exhausted")),
		"Shortcode generation exhausted",
	)
}

// GetStats 查询短码统计，已过期的短码同样返回
func (s *ShortURLService) GetStats(ctx context.Context, code string) (dto.StatsResponse, error) {
	entry, clicks, err := s.store.Snapshot(code)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.StatsResponse{}, s.fail(apperrors.ShortcodeNotFound(), "Shortcode not found")
	}
	if err != nil {
		return dto.StatsResponse{}, s.fail(apperrors.SystemError(err), "Failed to load stats")
	}
	return dto.NewStatsResponse(entry, clicks), nil
}

// RedirectToTargetURL 解析短码并记录一次点击，返回跳转地址
func (s *ShortURLService) RedirectToTargetURL(ctx context.Context, code string, visit Visit) (string, error) {
	entry, err := s.store.Get(code)
	if errors.Is(err, repository.ErrNotFound) {
		return "", s.fail(apperrors.ShortcodeNotFound(), "Shortcode not found")
	}
	if err != nil {
		return "", s.fail(apperrors.SystemError(err), "Failed to resolve shortcode")
	}

	now := s.now()
	if entry.IsExpired(now) {
		return "", s.fail(apperrors.ShortcodeExpired(), "Shortcode expired")
	}

	event := model.ClickEvent{
		Timestamp:     now,
		Referrer:      visit.Referrer,
		SourceAddress: visit.SourceAddress,
	}
	if !s.store.RecordClick(code, event) {
		logging.Logger.Warn("Click ledger missing for short code", zap.String("short_code", code))
	}
	if s.recorder != nil {
		s.recorder.Record(code, event)
	}

	s.notifier.Notify(logsink.LevelInfo, logsink.PackageService, "Redirected: "+code)
	return entry.TargetURL, nil
}
