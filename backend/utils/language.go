package utils

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
)

// Supported content languages. The first entry of the matcher is the fallback.
var supportedLanguages = []language.Tag{language.French, language.English, language.Arabic}

var languageMatcher = language.NewMatcher(supportedLanguages)

// IsSupportedLanguage reports whether code is one of ar, fr, en.
func IsSupportedLanguage(code string) bool {
	for _, tag := range supportedLanguages {
		if tag.String() == code {
			return true
		}
	}
	return false
}

// MatchLanguage resolves a ?lang= value or an Accept-Language header to ar, fr or en.
func MatchLanguage(query, acceptLanguage, fallback string) string {
	if IsSupportedLanguage(query) {
		return query
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, conf := languageMatcher.Match(tags...)
			if conf != language.No {
				return supportedLanguages[idx].String()
			}
		}
	}
	if IsSupportedLanguage(fallback) {
		return fallback
	}
	return language.French.String()
}

// RequestLanguage picks the content language for a request.
func RequestLanguage(c *fiber.Ctx, fallback string) string {
	return MatchLanguage(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage), fallback)
}
