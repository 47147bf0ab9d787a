package middleware

import (
	"github.com/gin-gonic/gin"

	"shorturl-go/pkg/logsink"
)

// RequestNotifier 每个请求上报一条 "METHOD /path" 日志
func RequestNotifier(notifier Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		notifier.Notify(logsink.LevelInfo, logsink.PackageMiddleware, c.Request.Method+" "+c.Request.URL.RequestURI())
		c.Next()
	}
}
