// Package compare diffs a localized field mapping against its source.
package compare

import "github.com/cardjson/i18nstats/cards"

// Result is the field-level translation status of one localized file.
type Result struct {
	// Total is the number of translatable values in the source.
	Total int
	// Translated counts values classified as translated.
	Translated int
	// Ignored counts translated values accepted through an ignore rule.
	Ignored int
	// Untranslated holds, per code, fields that are absent from the
	// localized record or still equal to the non-empty source text. Values
	// are the source text.
	Untranslated cards.Mapping
	// Missing holds source codes the localized file never mentions.
	Missing cards.Mapping
	// Extra lists localized codes that do not exist in the source.
	Extra []string
	// EmptyTranslations holds fields whose localized value is empty while
	// the source is not. They still count as translated.
	EmptyTranslations cards.Mapping
	// TranslatedFields holds the source text of every translated field.
	TranslatedFields cards.Mapping
}

// UntranslatedCount returns the number of untranslated values.
func (r *Result) UntranslatedCount() int {
	return r.Untranslated.Count()
}

// MissingCount returns the number of values in codes absent from the
// localized file.
func (r *Result) MissingCount() int {
	return r.Missing.Count()
}

// Compare classifies every source value against the localized mapping.
//
// For each localized code present in source, every source field is:
//   - untranslated when the localized record lacks it;
//   - translated when ignore holds exactly the localized value;
//   - untranslated when the localized value equals the non-empty source;
//   - translated otherwise, including an empty localized value.
//
// Source codes the localized mapping never visits end up in Missing. None of
// the inputs is modified; ignore may be nil.
func Compare(source, localized, ignore cards.Mapping) Result {
	res := Result{
		Total:             source.Count(),
		Untranslated:      make(cards.Mapping),
		EmptyTranslations: make(cards.Mapping),
		TranslatedFields:  make(cards.Mapping),
	}

	remaining := source.Clone()

	for _, code := range localized.Codes() {
		srcFields, ok := source[code]
		if !ok {
			res.Extra = append(res.Extra, code)
			continue
		}
		locFields := localized[code]

		for field, srcValue := range srcFields {
			locValue, present := locFields[field]
			switch {
			case !present:
				res.Untranslated.Set(code, field, srcValue)
				continue
			case ignored(ignore, code, field, locValue):
				res.Ignored++
			case locValue == srcValue && srcValue != "":
				res.Untranslated.Set(code, field, srcValue)
				continue
			case locValue == "" && srcValue != "":
				res.EmptyTranslations.Set(code, field, srcValue)
			}
			res.Translated++
			res.TranslatedFields.Set(code, field, srcValue)
		}

		delete(remaining, code)
	}

	res.Missing = remaining
	return res
}

func ignored(ignore cards.Mapping, code, field, value string) bool {
	v, ok := ignore.Lookup(code, field)
	return ok && v == value
}
