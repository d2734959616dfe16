// Package i18n resolves display strings by key and locale so the order core
// never branches on the active language itself.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// Locale is a supported storefront language.
type Locale string

const (
	Arabic  Locale = "ar"
	English Locale = "en"

	// Default is used when nothing in the request matches a supported locale.
	Default = Arabic
)

// matcher order matters: the first tag is the fallback for MatchStrings.
var (
	supported = []Locale{Arabic, English}
	matcher   = language.NewMatcher([]language.Tag{language.Arabic, language.English})
)

// Negotiate picks the best supported locale for the given preferences, most
// important first. Each entry may be a plain tag ("en") or a full
// Accept-Language header value ("en-US,en;q=0.9,ar;q=0.8").
func Negotiate(preferences ...string) Locale {
	for _, p := range preferences {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := matcher.Match(tags...)
		if conf == language.No {
			continue
		}
		return supported[idx]
	}
	return Default
}

// Parse returns the locale for an exact code, falling back to Default.
func Parse(code string) Locale {
	switch Locale(code) {
	case Arabic, English:
		return Locale(code)
	}
	return Default
}

// T returns the message for key in locale. Missing keys fall back to English
// and finally to the key itself, so a gap in a catalog is visible rather than blank.
func T(locale Locale, key string) string {
	if msg, ok := catalogs[locale][key]; ok {
		return msg
	}
	if msg, ok := catalogs[English][key]; ok {
		return msg
	}
	return key
}

type ctxKey struct{}

// WithLocale stores the request locale in ctx.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the locale stored by WithLocale, or Default.
func FromContext(ctx context.Context) Locale {
	if l, ok := ctx.Value(ctxKey{}).(Locale); ok {
		return l
	}
	return Default
}
