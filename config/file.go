// .i18nstats.yaml configuration file support.
//
// The file is optional. When present in the data repository root it sets
// defaults for the directory layout, the locales to check and the report
// style; command-line flags still override every value.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .i18nstats.yaml structure.
type File struct {
	// Languages restricts the audit to these locales (default: every
	// directory under TranslationsDir).
	Languages []string `yaml:"languages,omitempty"`
	// PackDir holds the per-cycle card files, relative to the root.
	PackDir string `yaml:"pack_dir,omitempty"`
	// SchemaDir must exist and be readable.
	SchemaDir string `yaml:"schema_dir,omitempty"`
	// TranslationsDir holds one subdirectory per locale.
	TranslationsDir string `yaml:"translations_dir,omitempty"`
	// IndexFiles are top-level data files checked after the pack files.
	IndexFiles []string `yaml:"index_files,omitempty"`
	// HideCompleted suppresses fully translated files in reports.
	HideCompleted bool `yaml:"hide_completed,omitempty"`
	// Report is "compact" or "verbose".
	Report string `yaml:"report,omitempty"`
	// Format is "text", "json" or "yaml".
	Format string `yaml:"format,omitempty"`
}

// Report styles.
const (
	ReportCompact = "compact"
	ReportVerbose = "verbose"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Default directory names.
const (
	DefaultPackDir         = "pack"
	DefaultSchemaDir       = "schema"
	DefaultTranslationsDir = "translations"
)

// DefaultIndexFiles are the top-level data files of the card repository.
var DefaultIndexFiles = []string{
	"cycles.json",
	"encounters.json",
	"factions.json",
	"packs.json",
	"subtypes.json",
	"types.json",
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".i18nstats.yaml"

// Default returns the configuration used when no file exists.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

// Load loads and validates .i18nstats.yaml from the given directory.
// Returns Default() if no file exists.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &f, nil
}

func (f *File) applyDefaults() {
	if f.PackDir == "" {
		f.PackDir = DefaultPackDir
	}
	if f.SchemaDir == "" {
		f.SchemaDir = DefaultSchemaDir
	}
	if f.TranslationsDir == "" {
		f.TranslationsDir = DefaultTranslationsDir
	}
	if len(f.IndexFiles) == 0 {
		f.IndexFiles = append([]string(nil), DefaultIndexFiles...)
	}
	if f.Report == "" {
		f.Report = ReportCompact
	}
	if f.Format == "" {
		f.Format = FormatText
	}
}

// Validate checks enumerated values.
func (f *File) Validate() error {
	switch f.Report {
	case ReportCompact, ReportVerbose:
	default:
		return fmt.Errorf("unknown report style %q (valid: %s, %s)", f.Report, ReportCompact, ReportVerbose)
	}
	switch f.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q (valid: %s, %s, %s)", f.Format, FormatText, FormatJSON, FormatYAML)
	}
	for _, name := range f.IndexFiles {
		if filepath.IsAbs(name) {
			return fmt.Errorf("index file %q must be relative to the repository root", name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolving paths
// ---------------------------------------------------------------------------

// Paths holds the directories of a data repository.
type Paths struct {
	Base         string
	Pack         string
	Schema       string
	Translations string
}

// Resolve joins the configured directories onto base. Absolute directory
// settings are kept as they are.
func (f *File) Resolve(base string) Paths {
	join := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}
	return Paths{
		Base:         base,
		Pack:         join(f.PackDir),
		Schema:       join(f.SchemaDir),
		Translations: join(f.TranslationsDir),
	}
}
