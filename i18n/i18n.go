// Package i18n translates what i18nstats prints about a data repository:
// report labels, the final error summary and locale counts.
//
// Catalogs live under locales/<lang>/LC_MESSAGES/i18nstats.po and are
// embedded in the binary. English is the msgid text itself, so a missing
// catalog or an uninitialized package prints English.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "i18nstats"

// EnvLanguage selects the output language of i18nstats alone. It takes
// precedence over the gettext variables.
const EnvLanguage = "I18NSTATS_LANG"

var (
	po   *gotext.Locale
	lang = "en"
)

// Init selects the message catalog. An empty lang is read from the
// environment: EnvLanguage, then LANGUAGE, LC_ALL, LC_MESSAGES and LANG.
func Init(l string) {
	if l == "" {
		l = detectLanguage()
	}
	lang = l

	po = gotext.NewLocaleFSWithPath(l, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Language returns the language selected by Init.
func Language() string {
	return lang
}

// Available lists the languages that have an embedded catalog.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// T translates msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N picks the plural form for n.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// Tf translates format and applies args to the result.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// Nf picks the plural form of format for n and applies args to it.
func Nf(singular, plural string, n int, args ...any) string {
	return fmt.Sprintf(N(singular, plural, n), args...)
}

// detectLanguage follows GNU gettext: LANGUAGE > LC_ALL > LC_MESSAGES > LANG,
// with EnvLanguage ahead of all of them.
func detectLanguage() string {
	for _, env := range []string{EnvLanguage, "LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := normalize(os.Getenv(env)); val != "" {
			return val
		}
	}
	return "en"
}

// normalize reduces a locale variable to a catalog name: the first entry of
// a colon list, without encoding or modifier ("de_AT.UTF-8@euro" -> "de_AT").
// "C" and "POSIX" mean no translation and yield "".
func normalize(val string) string {
	val, _, _ = strings.Cut(val, ":")
	if i := strings.IndexAny(val, ".@"); i >= 0 {
		val = val[:i]
	}
	if val == "C" || val == "POSIX" {
		return ""
	}
	return val
}
