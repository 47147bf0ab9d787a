package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/i18n"
	"shorturl-go/pkg/logging"
	"shorturl-go/pkg/logsink"
	"shorturl-go/response"
)

// Notifier 远程日志上报
type Notifier interface {
	Notify(level logsink.Level, pkg logsink.Package, message string)
}

// Recovery 捕获 panic，返回 500 并上报远程日志
func Recovery(notifier Notifier) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.Logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Stack("stack"),
		)
		notifier.Notify(logsink.LevelError, logsink.PackageService, fmt.Sprint(recovered))

		appErr := apperrors.SystemError(nil)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(i18n.T(c, appErr.MessageID, appErr.Message)))
	})
}
