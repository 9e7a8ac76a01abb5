// Package langmeta provides language display metadata (native names and
// emoji flags) for locale directories shown in reports.
package langmeta

import (
	"sort"
	"strings"
)

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

// Registry contains canonical language metadata.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"ca":      {Name: "Català", Flag: "🇪🇸"},
	"cs":      {Name: "Čeština", Flag: "🇨🇿"},
	"da":      {Name: "Dansk", Flag: "🇩🇰"},
	"de":      {Name: "Deutsch", Flag: "🇩🇪"},
	"el":      {Name: "Ελληνικά", Flag: "🇬🇷"},
	"en":      {Name: "English", Flag: "🇺🇸"},
	"en-GB":   {Name: "English (UK)", Flag: "🇬🇧"},
	"es":      {Name: "Español", Flag: "🇪🇸"},
	"fi":      {Name: "Suomi", Flag: "🇫🇮"},
	"fr":      {Name: "Français", Flag: "🇫🇷"},
	"hu":      {Name: "Magyar", Flag: "🇭🇺"},
	"it":      {Name: "Italiano", Flag: "🇮🇹"},
	"ja":      {Name: "日本語", Flag: "🇯🇵"},
	"ko":      {Name: "한국어", Flag: "🇰🇷"},
	"nl":      {Name: "Nederlands", Flag: "🇳🇱"},
	"no":      {Name: "Norsk", Flag: "🇳🇴"},
	"pl":      {Name: "Polski", Flag: "🇵🇱"},
	"pt":      {Name: "Português", Flag: "🇵🇹"},
	"pt-BR":   {Name: "Português (Brasil)", Flag: "🇧🇷"},
	"ro":      {Name: "Română", Flag: "🇷🇴"},
	"ru":      {Name: "Русский", Flag: "🇷🇺"},
	"sv":      {Name: "Svenska", Flag: "🇸🇪"},
	"tr":      {Name: "Türkçe", Flag: "🇹🇷"},
	"uk":      {Name: "Українська", Flag: "🇺🇦"},
	"vi":      {Name: "Tiếng Việt", Flag: "🇻🇳"},
	"zh":      {Name: "中文", Flag: "🇨🇳"},
	"zh-CN":   {Name: "简体中文", Flag: "🇨🇳"},
	"zh-TW":   {Name: "繁體中文", Flag: "🇹🇼"},
	"zh-Hant": {Name: "繁體中文", Flag: "🇹🇼"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		// Script subtags are title case (zh-Hant), regions upper case (pt-BR).
		if len(parts[1]) == 4 {
			parts[1] = strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:])
		} else {
			parts[1] = strings.ToUpper(parts[1])
		}
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for locale directory names,
// supporting variants like pt_BR, zh-cn, and base-language fallbacks.
// Unknown codes are returned as their own name without a flag.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	return Meta{Name: lang, Flag: ""}
}

// Label returns "code (Name)" for known locales and the bare code otherwise.
func Label(lang string) string {
	m := Resolve(lang)
	if m.Name == lang {
		return lang
	}
	return lang + " (" + m.Name + ")"
}

// Known returns the registered locale codes in sorted order.
func Known() []string {
	out := make([]string, 0, len(Registry))
	for k := range Registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
