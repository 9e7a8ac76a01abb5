// Package report holds per-file translation statistics and renders them.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cardjson/i18nstats/canonjson"
	"github.com/cardjson/i18nstats/cards"
	"github.com/cardjson/i18nstats/compare"
	"github.com/cardjson/i18nstats/i18n"
	"github.com/cardjson/i18nstats/langmeta"
)

// Stats is the translation status of one (locale, file) pair.
type Stats struct {
	// Locale is the locale directory name.
	Locale string
	// File is the source file, relative to the repository root.
	File string
	// Path is the localized file as shown to the user.
	Path string

	compare.Result

	// Outdated holds translated fields whose source text changed since the
	// lock file recorded it. Values are the current source text.
	Outdated cards.Mapping
}

// Complete reports whether every source value is translated.
func (s *Stats) Complete() bool {
	return s.Translated == s.Total
}

// PrintShort writes "path (translated / total)". Nothing is written for a
// complete file when hideCompleted is set.
func (s *Stats) PrintShort(w io.Writer, hideCompleted bool) error {
	if hideCompleted && s.Complete() {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s (%d / %d)\n", s.Path, s.Translated, s.Total)
	return err
}

// Print writes the verbose report: a header, the counts and the content of
// every non-empty detail mapping as canonical JSON.
func (s *Stats) Print(w io.Writer, hideCompleted bool) error {
	if _, err := fmt.Fprintf(w, "%s: %s\n", langmeta.Label(s.Locale), s.File); err != nil {
		return err
	}
	if !hideCompleted || len(s.Untranslated) != 0 {
		_, err := fmt.Fprintf(w, "%s: %s: %d %s: %d\n", s.Locale,
			i18n.T("translated"), s.Translated,
			i18n.T("untranslated"), s.UntranslatedCount())
		if err != nil {
			return err
		}
	}

	sections := []struct {
		label string
		m     cards.Mapping
	}{
		{i18n.T("untranslated fields"), s.Untranslated},
		{i18n.T("missing from translated file"), s.Missing},
		{i18n.T("empty translations"), s.EmptyTranslations},
		{i18n.T("outdated translations"), s.Outdated},
	}
	for _, sec := range sections {
		if len(sec.m) == 0 {
			continue
		}
		text, err := canonjson.Format(cards.Flatten(sec.m))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s: %s:\n%s", s.Locale, sec.label, text); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Collection
// ---------------------------------------------------------------------------

// Collection accumulates Stats in the order they were produced.
type Collection struct {
	items []*Stats
}

// Add appends s.
func (c *Collection) Add(s *Stats) {
	c.items = append(c.items, s)
}

// Stats returns the collected entries.
func (c *Collection) Stats() []*Stats {
	return c.items
}

// Totals sums translated and total values over all entries.
func (c *Collection) Totals() (translated, total int) {
	for _, s := range c.items {
		translated += s.Translated
		total += s.Total
	}
	return
}

type fileReport struct {
	Locale       string        `json:"locale" yaml:"locale"`
	File         string        `json:"file" yaml:"file"`
	Path         string        `json:"path" yaml:"path"`
	Total        int           `json:"total" yaml:"total"`
	Translated   int           `json:"translated" yaml:"translated"`
	Untranslated cards.Mapping `json:"untranslated,omitempty" yaml:"untranslated,omitempty"`
	Missing      cards.Mapping `json:"missing,omitempty" yaml:"missing,omitempty"`
	Extra        []string      `json:"extra,omitempty" yaml:"extra,omitempty"`
	Empty        cards.Mapping `json:"empty,omitempty" yaml:"empty,omitempty"`
	Outdated     cards.Mapping `json:"outdated,omitempty" yaml:"outdated,omitempty"`
}

type document struct {
	Files      []fileReport `json:"files" yaml:"files"`
	Translated int          `json:"translated" yaml:"translated"`
	Total      int          `json:"total" yaml:"total"`
}

// Encode writes every entry in a machine-readable format: "json" or "yaml".
func (c *Collection) Encode(w io.Writer, format string) error {
	doc := document{Files: make([]fileReport, 0, len(c.items))}
	doc.Translated, doc.Total = c.Totals()
	for _, s := range c.items {
		doc.Files = append(doc.Files, fileReport{
			Locale:       s.Locale,
			File:         s.File,
			Path:         s.Path,
			Total:        s.Total,
			Translated:   s.Translated,
			Untranslated: s.Untranslated,
			Missing:      s.Missing,
			Extra:        s.Extra,
			Empty:        s.EmptyTranslations,
			Outdated:     s.Outdated,
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported report format %q", format)
}
