// Package cards extracts the translatable text of card data records.
//
// A data file is a JSON list of records, each identified by a "code".
// Only a fixed set of fields is translatable; everything else in a
// localized record is unexpected and gets reported.
package cards

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CodeKey is the record identifier field.
const CodeKey = "code"

// TranslatableFields lists, in sorted order, every field eligible for
// localization. The set is fixed and never inferred from data.
var TranslatableFields = []string{
	"back_flavor",
	"back_name",
	"back_text",
	"back_traits",
	"customization_change",
	"customization_text",
	"flavor",
	"name",
	"slot",
	"subname",
	"text",
	"traits",
}

var translatable = func() map[string]bool {
	out := make(map[string]bool, len(TranslatableFields))
	for _, f := range TranslatableFields {
		out[f] = true
	}
	return out
}()

// IsTranslatable reports whether field belongs to TranslatableFields.
func IsTranslatable(field string) bool {
	return translatable[field]
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Record is a decoded data record.
type Record map[string]any

// Code returns the record code as text. Non-string codes use their compact
// JSON form, an absent code is "".
func (r Record) Code() string {
	return text(r[CodeKey])
}

// Fields maps translatable field names to their text.
type Fields map[string]string

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Mapping maps record codes to their translatable fields.
type Mapping map[string]Fields

// Codes returns the codes in sorted order.
func (m Mapping) Codes() []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Count returns the number of field values across all codes.
func (m Mapping) Count() int {
	n := 0
	for _, f := range m {
		n += len(f)
	}
	return n
}

// Clone returns a deep copy of m.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for code, f := range m {
		out[code] = f.Clone()
	}
	return out
}

// Lookup returns the value of field for code.
func (m Mapping) Lookup(code, field string) (string, bool) {
	f, ok := m[code]
	if !ok {
		return "", false
	}
	v, ok := f[field]
	return v, ok
}

// Set stores value for (code, field), creating the code entry if needed.
func (m Mapping) Set(code, field, value string) {
	if m[code] == nil {
		m[code] = make(Fields)
	}
	m[code][field] = value
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Records converts a decoded JSON value into a record list.
func Records(v any) ([]Record, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of records, got %s", jsonKind(v))
	}
	out := make([]Record, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected an object, got %s", i, jsonKind(item))
		}
		out = append(out, Record(obj))
	}
	return out, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// text stringifies a field value. Non-string values use compact JSON so that
// comparison stays plain string identity.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// Extract returns the translatable subset of r and the sorted names of any
// fields that are neither translatable nor the code.
func Extract(r Record) (Fields, []string) {
	fields := make(Fields)
	var extra []string
	for name, v := range r {
		switch {
		case IsTranslatable(name):
			fields[name] = text(v)
		case name != CodeKey:
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return fields, extra
}

// WarningKind classifies a Warning.
type WarningKind int

const (
	// DuplicateCode: a later record reuses a code; it was skipped.
	DuplicateCode WarningKind = iota
	// ExtraFields: a record carries non-translatable fields.
	ExtraFields
)

// Warning is a non-fatal finding produced while building a Mapping.
type Warning struct {
	Kind   WarningKind
	Code   string
	Fields []string
}

func (w Warning) String() string {
	switch w.Kind {
	case DuplicateCode:
		return fmt.Sprintf("duplicate 'code' %s", w.Code)
	case ExtraFields:
		return fmt.Sprintf("extra entries for %s: %s", w.Code, strings.Join(w.Fields, ", "))
	}
	return fmt.Sprintf("warning %d for %s", w.Kind, w.Code)
}

// BuildOptions control Build.
type BuildOptions struct {
	// WarnExtra reports records with non-translatable fields. Set it for
	// localized files only.
	WarnExtra bool
}

// Build collects the translatable fields of records keyed by code.
//
// The first record for a code wins; later ones produce a DuplicateCode
// warning. Records without translatable fields are not stored. The returned
// total is the number of stored field values.
func Build(records []Record, opts BuildOptions) (Mapping, int, []Warning) {
	m := make(Mapping)
	seen := make(map[string]bool, len(records))
	total := 0
	var warnings []Warning

	for _, r := range records {
		code := r.Code()
		if seen[code] {
			warnings = append(warnings, Warning{Kind: DuplicateCode, Code: code})
			continue
		}
		seen[code] = true

		fields, extra := Extract(r)
		if opts.WarnExtra && len(extra) > 0 {
			warnings = append(warnings, Warning{Kind: ExtraFields, Code: code, Fields: extra})
		}
		if len(fields) > 0 {
			m[code] = fields
		}
		total += len(fields)
	}

	return m, total, warnings
}

// Flatten turns a Mapping back into records sorted by code, with the code
// field attached, ready for canonical rendering.
func Flatten(m Mapping) []Record {
	out := make([]Record, 0, len(m))
	for _, code := range m.Codes() {
		r := make(Record, len(m[code])+1)
		for k, v := range m[code] {
			r[k] = v
		}
		r[CodeKey] = code
		out = append(out, r)
	}
	return out
}
