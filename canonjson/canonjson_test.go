package canonjson

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestFormatSortsKeysAndUsesTabs(t *testing.T) {
	v := []any{
		map[string]any{"name": "Roland Banks", "code": "01001", "traits": []any{"Agency.", "Detective."}},
	}

	got, err := Format(v)
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	want := "[\n" +
		"\t{\n" +
		"\t\t\"code\": \"01001\",\n" +
		"\t\t\"name\": \"Roland Banks\",\n" +
		"\t\t\"traits\": [\n" +
		"\t\t\t\"Agency.\",\n" +
		"\t\t\t\"Detective.\"\n" +
		"\t\t]\n" +
		"\t}\n" +
		"]\n"
	if got != want {
		t.Fatalf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatSubstitutions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "curly quotes", in: "Roland’s ‘gun’", want: `"Roland's 'gun'"`},
		{name: "minus and en dash", in: "−1 – 2", want: `"-1 - 2"`},
		{name: "windows newline", in: "a\r\nb", want: `"a\nb"`},
		{name: "space before newline", in: "a \nb", want: `"a\nb"`},
		{name: "space before windows newline", in: "a \r\nb", want: `"a\nb"`},
		{name: "adjacent brackets", in: "[action][reaction]", want: `"[action] [reaction]"`},
		{name: "html is literal", in: "<b>Forced</b> & more", want: `"<b>Forced</b> & more"`},
		{name: "non-ascii is literal", in: "Ключ", want: `"Ключ"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.in)
			if err != nil {
				t.Fatalf("Format error: %v", err)
			}
			if got != tc.want+"\n" {
				t.Fatalf("Format(%q) = %q, want %q", tc.in, got, tc.want+"\n")
			}
		})
	}
}

func TestFormatDeepNestingStopsAtEightTabs(t *testing.T) {
	var v any = "leaf"
	for i := 0; i < 9; i++ {
		v = []any{v}
	}

	got := MustFormat(v)
	line := strings.Split(got, "\n")[9]
	want := strings.Repeat("\t", 8) + "    \"leaf\""
	if line != want {
		t.Fatalf("deepest line = %q, want %q", line, want)
	}
}

func TestFormatKeepsNumberText(t *testing.T) {
	v, err := Decode([]byte(`{"cost": 1.50, "xp": 10}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	got := MustFormat(v)
	if !strings.Contains(got, `"cost": 1.50`) {
		t.Fatalf("number text changed: %s", got)
	}
}

func TestFormatLineSeparators(t *testing.T) {
	v, err := Decode([]byte(`["a\u2028b", "c\u2029d", "\\u2028"]`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	got := MustFormat(v)
	want := "[\n\t\"a\u2028b\",\n\t\"c\u2029d\",\n\t\"\\\\u2028\"\n]\n"
	if got != want {
		t.Fatalf("MustFormat = %q, want %q", got, want)
	}

	doc, err := Check([]byte(got))
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if !doc.Formatted() {
		t.Fatalf("literal separators reported as drift:\n%q", doc.Canonical)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string][]byte{
		"truncated":    []byte(`[{"code":`),
		"trailing":     []byte(`[] []`),
		"invalid utf8": {'"', 0xff, '"'},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestCheckDetectsFormatting(t *testing.T) {
	doc, err := Check([]byte(`[{"name":"x","code":"1"}]`))
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if doc.Formatted() {
		t.Fatal("compact JSON reported as canonical")
	}

	again, err := Check([]byte(doc.Canonical))
	if err != nil {
		t.Fatalf("Check canonical error: %v", err)
	}
	if !again.Formatted() {
		t.Fatalf("canonical text not recognised:\n%s", doc.Canonical)
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("fix rewrites file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "core.json")
		if err := os.WriteFile(path, []byte(`[{"text":"Draw 1","code":"01001"}]`), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		doc, err := LoadFile(path, LoadOptions{Fix: true})
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(data) != doc.Canonical {
			t.Fatalf("file not rewritten:\n%s", data)
		}
	})

	t.Run("without fix leaves file alone", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "core.json")
		raw := `[{"code":"01001"}]`
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		doc, err := LoadFile(path, LoadOptions{})
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		if doc.Formatted() {
			t.Fatal("expected formatting drift")
		}
		data, _ := os.ReadFile(path)
		if string(data) != raw {
			t.Fatalf("file modified without fix: %s", data)
		}
	})

	t.Run("failed rewrite keeps document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "core.json")
		raw := `[{"text":"Draw 1","code":"01001"}]`
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		errDenied := errors.New("permission denied")
		orig := writeFile
		writeFile = func(string, []byte, os.FileMode) error { return errDenied }
		t.Cleanup(func() { writeFile = orig })

		doc, err := LoadFile(path, LoadOptions{Fix: true})
		var we *WriteError
		if !errors.As(err, &we) || we.Path != path || !errors.Is(err, errDenied) {
			t.Fatalf("LoadFile error = %v, want *WriteError for %s", err, path)
		}
		if doc == nil || doc.Formatted() {
			t.Fatalf("LoadFile document = %+v, want the drifted document", doc)
		}
		if diff := cmp.Diff([]any{map[string]any{"code": "01001", "text": "Draw 1"}}, doc.Value); diff != "" {
			t.Fatalf("value (-want +got):\n%s", diff)
		}
		data, _ := os.ReadFile(path)
		if string(data) != raw {
			t.Fatalf("file changed after failed rewrite: %s", data)
		}
	})

	t.Run("banned content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "core.json")
		if err := os.WriteFile(path, []byte(`[{"code":"1","text":"x<sup>2</sup>"}]`), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		doc, err := LoadFile(path, LoadOptions{Fix: true})
		var ce *ContentError
		if !errors.As(err, &ce) {
			t.Fatalf("LoadFile error = %v, want *ContentError", err)
		}
		if doc != nil {
			t.Fatal("expected no document for invalid content")
		}
	})

	t.Run("decode error carries path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		if err := os.WriteFile(path, []byte(`[`), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		_, err := LoadFile(path, LoadOptions{})
		var de *DecodeError
		if !errors.As(err, &de) || de.Path != path {
			t.Fatalf("LoadFile error = %v, want *DecodeError for %s", err, path)
		}
	})
}

// genKey draws object keys from a plain alphabet so sort order is stable
// under punctuation substitution.
func genKey(t *rapid.T) string {
	return rapid.StringMatching(`[a-z_]{1,8}`).Draw(t, "key")
}

// genValue draws an arbitrary decoded JSON value up to the given depth.
func genValue(t *rapid.T, depth int) any {
	kind := rapid.IntRange(0, 5).Draw(t, "kind")
	if depth <= 0 && kind >= 4 {
		kind = 3
	}
	switch kind {
	case 0:
		return nil
	case 1:
		return rapid.Bool().Draw(t, "bool")
	case 2:
		return json.Number(rapid.SampledFrom([]string{"0", "-1", "42", "1.5", "1e+21"}).Draw(t, "num"))
	case 3:
		return rapid.OneOf(
			rapid.String(),
			rapid.SampledFrom([]string{"a \r\n b", "[x][y]", "’−–‘", "  \n", "<b>"}),
		).Draw(t, "str")
	case 4:
		n := rapid.IntRange(0, 3).Draw(t, "len")
		out := make([]any, n)
		for i := range out {
			out[i] = genValue(t, depth-1)
		}
		return out
	default:
		n := rapid.IntRange(0, 3).Draw(t, "size")
		out := make(map[string]any, n)
		for i := 0; i < n; i++ {
			out[genKey(t)] = genValue(t, depth-1)
		}
		return out
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genValue(t, 4)
		first, err := Format(v)
		if err != nil {
			t.Fatalf("Format error: %v", err)
		}
		doc, err := Check([]byte(first))
		if err != nil {
			t.Fatalf("Check error: %v\n%s", err, first)
		}
		if !doc.Formatted() {
			t.Fatalf("format not idempotent:\nfirst:\n%s\nsecond:\n%s", first, doc.Canonical)
		}
	})
}

func TestFormatRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := map[string]any{}
		n := rapid.IntRange(0, 6).Draw(t, "fields")
		for i := 0; i < n; i++ {
			v[genKey(t)] = rapid.StringMatching(`[A-Za-z0-9 .,!?]{0,20}`).Draw(t, "value")
		}
		got, err := Decode([]byte(MustFormat(v)))
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if diff := cmp.Diff(any(v), got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}
