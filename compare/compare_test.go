package compare

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cardjson/i18nstats/cards"
)

func TestCompareIdenticalNonEmptyIsUntranslated(t *testing.T) {
	source := cards.Mapping{"A1": {"name": "Noise", "text": "Draw 1"}}
	localized := cards.Mapping{"A1": {"name": "Noise", "text": "Draw 1"}}

	res := Compare(source, localized, nil)

	if res.Total != 2 || res.Translated != 0 {
		t.Fatalf("total=%d translated=%d, want 2 and 0", res.Total, res.Translated)
	}
	want := cards.Mapping{"A1": {"name": "Noise", "text": "Draw 1"}}
	if diff := cmp.Diff(want, res.Untranslated); diff != "" {
		t.Fatalf("untranslated mismatch (-want +got):\n%s", diff)
	}
	if len(res.Missing) != 0 {
		t.Fatalf("missing = %v, want empty", res.Missing)
	}
}

func TestCompareFullyTranslated(t *testing.T) {
	source := cards.Mapping{
		"01001": {"name": "Roland Banks", "text": "Draw 1 card."},
		"01002": {"name": "Daisy Walker"},
	}
	localized := cards.Mapping{
		"01001": {"name": "Roland Banks (de)", "text": "Ziehe 1 Karte."},
		"01002": {"name": "Daisy Walker (de)"},
	}

	res := Compare(source, localized, nil)

	if res.Translated != res.Total || res.Total != 3 {
		t.Fatalf("translated=%d total=%d, want 3/3", res.Translated, res.Total)
	}
	if len(res.Untranslated) != 0 || len(res.Missing) != 0 {
		t.Fatalf("untranslated=%v missing=%v, want both empty", res.Untranslated, res.Missing)
	}
}

func TestCompareMissingLocalizedFile(t *testing.T) {
	source := cards.Mapping{
		"01001": {"name": "Roland Banks", "text": "Draw 1 card."},
		"01002": {"name": "Daisy Walker"},
	}

	res := Compare(source, cards.Mapping{}, cards.Mapping{})

	if res.Translated != 0 {
		t.Fatalf("translated = %d, want 0", res.Translated)
	}
	if len(res.Untranslated) != 0 {
		t.Fatalf("untranslated = %v, want empty", res.Untranslated)
	}
	if diff := cmp.Diff(source, res.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareIgnoreOverride(t *testing.T) {
	source := cards.Mapping{"01001": {"text": "Ability text"}}
	localized := cards.Mapping{"01001": {"text": "Ability text"}}
	ignore := cards.Mapping{"01001": {"text": "Ability text"}}

	res := Compare(source, localized, ignore)

	if res.Translated != 1 || res.Ignored != 1 {
		t.Fatalf("translated=%d ignored=%d, want 1 and 1", res.Translated, res.Ignored)
	}
	if len(res.Untranslated) != 0 {
		t.Fatalf("untranslated = %v, want empty", res.Untranslated)
	}
}

func TestCompareIgnoreRequiresExactValue(t *testing.T) {
	source := cards.Mapping{"01001": {"text": "Ability text"}}
	localized := cards.Mapping{"01001": {"text": "Ability text"}}
	ignore := cards.Mapping{"01001": {"text": "Ability text."}}

	res := Compare(source, localized, ignore)

	if res.Translated != 0 {
		t.Fatalf("translated = %d, want 0", res.Translated)
	}
}

func TestCompareFieldClassification(t *testing.T) {
	source := cards.Mapping{"01001": {
		"name":    "Roland Banks",
		"subname": "The Fed",
		"text":    "Draw 1 card.",
		"flavor":  "",
		"traits":  "Agency. Detective.",
	}}
	localized := cards.Mapping{"01001": {
		"name":    "Roland Banks",
		"subname": "Der Agent",
		"text":    "",
		"flavor":  "",
	}}

	res := Compare(source, localized, nil)

	// subname differs, text is the empty-value quirk, flavor is empty on both sides.
	if res.Translated != 3 {
		t.Fatalf("translated = %d, want 3", res.Translated)
	}
	wantUntranslated := cards.Mapping{"01001": {"name": "Roland Banks", "traits": "Agency. Detective."}}
	if diff := cmp.Diff(wantUntranslated, res.Untranslated); diff != "" {
		t.Fatalf("untranslated mismatch (-want +got):\n%s", diff)
	}
	wantEmpty := cards.Mapping{"01001": {"text": "Draw 1 card."}}
	if diff := cmp.Diff(wantEmpty, res.EmptyTranslations); diff != "" {
		t.Fatalf("empty translations mismatch (-want +got):\n%s", diff)
	}
	wantTranslated := cards.Mapping{"01001": {"subname": "The Fed", "text": "Draw 1 card.", "flavor": ""}}
	if diff := cmp.Diff(wantTranslated, res.TranslatedFields); diff != "" {
		t.Fatalf("translated fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareExtraCodesAndMissing(t *testing.T) {
	source := cards.Mapping{
		"01001": {"name": "Roland Banks"},
		"01002": {"name": "Daisy Walker", "text": "Tome."},
	}
	localized := cards.Mapping{
		"01001": {"name": "Roland (fr)"},
		"99999": {"name": "Ghost"},
	}

	res := Compare(source, localized, nil)

	if !reflect.DeepEqual(res.Extra, []string{"99999"}) {
		t.Fatalf("extra = %v, want [99999]", res.Extra)
	}
	if res.Total != 3 || res.Translated != 1 {
		t.Fatalf("total=%d translated=%d, want 3 and 1", res.Total, res.Translated)
	}
	wantMissing := cards.Mapping{"01002": {"name": "Daisy Walker", "text": "Tome."}}
	if diff := cmp.Diff(wantMissing, res.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if res.MissingCount() != 2 || res.UntranslatedCount() != 0 {
		t.Fatalf("counts: missing=%d untranslated=%d", res.MissingCount(), res.UntranslatedCount())
	}
}

func TestCompareDoesNotMutateInputs(t *testing.T) {
	source := cards.Mapping{"01001": {"name": "Roland Banks"}, "01002": {"name": "Daisy"}}
	localized := cards.Mapping{"01001": {"name": "Roland (it)"}}
	before := source.Clone()

	Compare(source, localized, nil)

	if diff := cmp.Diff(before, source); diff != "" {
		t.Fatalf("source mutated (-before +after):\n%s", diff)
	}
}
