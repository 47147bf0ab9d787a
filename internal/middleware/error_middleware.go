package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/i18n"
	"shorturl-go/pkg/logging"
	"shorturl-go/response"
)

// GlobalErrorMiddleware 全局错误中间件
//
// 只处理第一个错误；非 AppError 统一按内部错误返回，不暴露细节。
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperrors.From(c.Errors[0].Err)
		if appErr.Kind == apperrors.KindInternal {
			logging.Logger.Error("Request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(c.Errors[0].Err),
			)
		}
		c.AbortWithStatusJSON(appErr.Code, response.Error(i18n.T(c, appErr.MessageID, appErr.Message)))
	}
}
