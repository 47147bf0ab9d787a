package router

import (
	"github.com/gin-gonic/gin"
	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"

	"shorturl-go/internal/handler"
	"shorturl-go/internal/i18n"
	"shorturl-go/internal/middleware"
	"shorturl-go/pkg/logsink"
)

// Options 路由依赖
type Options struct {
	BaseURL        string
	TrustedProxies []string // 为空时不信任任何代理，ClientIP 取 RemoteAddr
	Logger         *zap.Logger
	Bundle         *thirdPartyI18n.Bundle
	Notifier       middleware.Notifier
}

// NewRouter 注册中间件和全部路由
func NewRouter(svc handler.ShortURLService, opts Options) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = logsink.Discard{}
	}
	if opts.Bundle == nil {
		bundle, err := i18n.InitI18n()
		if err != nil {
			return nil, err
		}
		opts.Bundle = bundle
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(middleware.Recovery(opts.Notifier))
	r.Use(middleware.ZapGinLogger(opts.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(opts.Bundle))
	r.Use(middleware.RequestNotifier(opts.Notifier))
	r.Use(middleware.GlobalErrorMiddleware())

	h := handler.NewShortURLHandler(svc, opts.Notifier, opts.BaseURL)

	r.GET("/", handler.Form)
	r.POST("/shorturls", h.Create)
	r.GET("/shorturls/:shortcode", h.Stats)
	r.GET("/:shortcode", h.Redirect)

	return r, nil
}
