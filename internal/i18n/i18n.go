package i18n

import (
	"embed"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// LocalizerKey gin.Context 中保存 Localizer 的键
const LocalizerKey = "i18n.Localizer"

//go:embed locales/*.toml
var locales embed.FS

// SupportedLanguages 支持的语言，第一个为默认语言
var SupportedLanguages = []language.Tag{language.English, language.Chinese}

// InitI18n 加载内置的 TOML 消息文件
func InitI18n() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(SupportedLanguages[0])
	// ⚠️ 注册 TOML 解析器
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		filePath := path.Join("locales", entry.Name())
		file, err := locales.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(file, filePath); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

// MatchLanguage 根据 Accept-Language 选择支持的语言，无法匹配时返回默认语言
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	matcher := language.NewMatcher(SupportedLanguages)
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return SupportedLanguages[0]
	}
	return SupportedLanguages[index]
}

// T 使用请求上下文中的 Localizer 翻译消息，缺失时返回 fallback
func T(c *gin.Context, messageID, fallback string) string {
	value, ok := c.Get(LocalizerKey)
	if !ok {
		return fallback
	}
	localizer, ok := value.(*i18n.Localizer)
	if !ok {
		return fallback
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil || strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
