package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/dto"
	"shorturl-go/internal/model"
	"shorturl-go/internal/service"
	"shorturl-go/pkg/logsink"
)

// ShortURLService 处理器依赖的业务接口
type ShortURLService interface {
	CreateShortURL(ctx context.Context, req dto.CreateShortURLRequest) (model.ShortCodeEntry, error)
	GetStats(ctx context.Context, code string) (dto.StatsResponse, error)
	RedirectToTargetURL(ctx context.Context, code string, visit service.Visit) (string, error)
}

// Notifier 远程日志上报
type Notifier interface {
	Notify(level logsink.Level, pkg logsink.Package, message string)
}

type ShortURLHandler struct {
	svc      ShortURLService
	notifier Notifier
	baseURL  string
}

// NewShortURLHandler baseURL 为空时根据请求拼接短链地址
func NewShortURLHandler(svc ShortURLService, notifier Notifier, baseURL string) *ShortURLHandler {
	if notifier == nil {
		notifier = logsink.Discard{}
	}
	return &ShortURLHandler{svc: svc, notifier: notifier, baseURL: baseURL}
}

// Create POST /shorturls
func (h *ShortURLHandler) Create(c *gin.Context) {
	var req dto.CreateShortURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		h.notifier.Notify(logsink.LevelError, logsink.PackageService, "Invalid URL")
		_ = c.Error(apperrors.InvalidURL().WithCause(err))
		return
	}

	entry, err := h.svc.CreateShortURL(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateShortURLResponse{
		ShortLink: h.shortLink(c, entry.Code),
		Expiry:    dto.FormatTime(entry.ExpiresAt),
	})
}

// Stats GET /shorturls/:shortcode
func (h *ShortURLHandler) Stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context(), c.Param("shortcode"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Redirect GET /:shortcode
func (h *ShortURLHandler) Redirect(c *gin.Context) {
	target, err := h.svc.RedirectToTargetURL(c.Request.Context(), c.Param("shortcode"), service.Visit{
		Referrer:      c.Request.Referer(),
		SourceAddress: c.ClientIP(),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *ShortURLHandler) shortLink(c *gin.Context, code string) string {
	if h.baseURL != "" {
		return h.baseURL + "/" + code
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/" + code
}
