// Package canonjson renders decoded JSON values into the one canonical text
// form used by the card data repository, and checks files against it.
//
// The canonical form is:
//
//	[
//		{
//			"code": "01001",
//			"name": "Roland Banks"
//		}
//	]
//
// Keys are sorted, nesting is indented with tabs, typographic quotes and
// dashes are replaced by their ASCII counterparts and the text ends with a
// single newline.
package canonjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// BannedContent is rejected wherever it appears in canonical text.
const BannedContent = "<sup>"

const maxTabDepth = 8

var punctuation = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"−", "-",
	"–", "-",
)

// writeFile is replaced in tests to make rewrites fail.
var writeFile = os.WriteFile

// leadingSpaces[n] matches n*4 spaces at the start of a line.
var leadingSpaces = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, maxTabDepth+1)
	for n := 1; n <= maxTabDepth; n++ {
		out[n] = regexp.MustCompile("(?m)^" + strings.Repeat("    ", n))
	}
	return out
}()

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// DecodeError reports bytes that are not UTF-8 encoded JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("file is not valid JSON: %v", e.Err)
	}
	return fmt.Sprintf("%s: file is not valid JSON: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ContentError reports canonical text containing BannedContent.
type ContentError struct {
	Path string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("%s: file contains invalid content (%s)", e.Path, BannedContent)
}

// WriteError reports a failed rewrite of a file into canonical form.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: cannot write canonical formatting: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// Format renders v as canonical JSON text.
func Format(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}

	s := strings.TrimSuffix(buf.String(), "\n")
	s = unescapeSeparators(s)
	s = punctuation.Replace(s)
	s = collapseNewlines(s)
	s = strings.ReplaceAll(s, "][", "] [")
	for n := maxTabDepth; n >= 1; n-- {
		s = leadingSpaces[n].ReplaceAllLiteralString(s, strings.Repeat("\t", n))
	}
	return s + "\n", nil
}

// collapseNewlines rewrites escaped `\r\n` and ` \n` to `\n` until neither is
// left. Runs such as `\r\r\n`, `  \n` or `\r \n` need more than one round.
func collapseNewlines(s string) string {
	for {
		next := strings.ReplaceAll(s, `\r\n`, `\n`)
		next = strings.ReplaceAll(next, ` \n`, `\n`)
		if next == s {
			return s
		}
		s = next
	}
}

// unescapeSeparators writes U+2028 and U+2029 literally. The encoder always
// escapes them; escaped backslashes are skipped so `\\u2028` text survives.
func unescapeSeparators(s string) string {
	if !strings.Contains(s, `\u202`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, `\\`):
			b.WriteString(`\\`)
			i++
		case strings.HasPrefix(rest, `\u2028`):
			b.WriteRune('\u2028')
			i += 5
		case strings.HasPrefix(rest, `\u2029`):
			b.WriteRune('\u2029')
			i += 5
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// MustFormat is Format for values known to be encodable.
func MustFormat(v any) string {
	s, err := Format(v)
	if err != nil {
		panic(err)
	}
	return s
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses UTF-8 JSON text. Numbers are kept as json.Number so their
// original text survives re-encoding.
func Decode(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, &DecodeError{Err: errors.New("invalid UTF-8")}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Err: errors.New("extra data after top-level value")}
	}
	return v, nil
}

// Document is a decoded file together with its raw and canonical text.
type Document struct {
	Value     any
	Raw       string
	Canonical string
}

// Formatted reports whether the raw text already is canonical.
func (d *Document) Formatted() bool {
	return d.Raw == d.Canonical
}

// Check decodes raw and renders the canonical text for comparison.
func Check(raw []byte) (*Document, error) {
	v, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	canonical, err := Format(v)
	if err != nil {
		return nil, err
	}
	return &Document{Value: v, Raw: string(raw), Canonical: canonical}, nil
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// LoadOptions control LoadFile.
type LoadOptions struct {
	// Fix rewrites files whose text is not canonical.
	Fix bool
}

// LoadFile reads and checks a JSON file.
//
// A *DecodeError or *ContentError means no data is returned. A *WriteError
// is returned together with a valid Document: the data is usable even though
// the rewrite failed.
func LoadFile(path string, opts LoadOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Check(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}

	if strings.Contains(doc.Canonical, BannedContent) {
		return nil, &ContentError{Path: path}
	}

	if opts.Fix && !doc.Formatted() && len(doc.Canonical) > 0 {
		if err := writeFile(path, []byte(doc.Canonical), 0644); err != nil {
			return doc, &WriteError{Path: path, Err: err}
		}
	}

	return doc, nil
}
