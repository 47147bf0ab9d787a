package middleware

import (
	"github.com/gin-gonic/gin"
	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"shorturl-go/internal/i18n"
)

// I18nMiddleware 根据 Accept-Language 选择语言，Localizer 存入 gin.Context
func I18nMiddleware(bundle *thirdPartyI18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := i18n.MatchLanguage(c.GetHeader("Accept-Language"))
		localizer := thirdPartyI18n.NewLocalizer(bundle, lang.String())
		c.Set(i18n.LocalizerKey, localizer)
		c.Next()
	}
}
