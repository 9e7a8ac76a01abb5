package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cardjson/i18nstats/audit"
	"github.com/cardjson/i18nstats/config"
)

// auditFlags holds every command-line setting of an audit.
type auditFlags struct {
	// Shared by all commands
	basePath   string
	packPath   string
	schemaPath string
	languages  string
	verbose    int

	// Audit only
	fix              bool
	hideCompleted    bool
	strictFormatting bool
	updateLock       bool
	report           string
	format           string
}

// normalizeFlagName accepts the underscore spelling of every long flag
// (--base_path as well as --base-path).
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// registerShared adds the repository layout flags.
func (f *auditFlags) registerShared(fs *pflag.FlagSet) {
	fs.StringVarP(&f.basePath, "base-path", "b", ".", "Root directory of the JSON repository")
	fs.StringVarP(&f.packPath, "pack-path", "p", "", "Pack directory (default: BASE_PATH/"+config.DefaultPackDir+")")
	fs.StringVarP(&f.schemaPath, "schema-path", "c", "", "Schema directory (default: BASE_PATH/"+config.DefaultSchemaDir+")")
	fs.StringVarP(&f.languages, "languages", "l", "", "Comma-separated list of locales to process (default: all)")
	fs.CountVarP(&f.verbose, "verbose", "v", "Verbose output (repeat for more)")
}

// registerAudit adds the flags of the audit itself.
func (f *auditFlags) registerAudit(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.fix, "fix-formatting", "f", false, "Rewrite files into canonical formatting")
	fs.BoolVarP(&f.hideCompleted, "hide-completed", "s", false, "Do not show fully translated files")
	fs.BoolVar(&f.strictFormatting, "strict-formatting", false, "Count non-canonical files as formatting errors")
	fs.BoolVar(&f.updateLock, "update-lock", false, "Record source checksums of translated fields in the lock file")
	fs.StringVar(&f.report, "report", "", "Report style: compact, verbose (default from config: compact)")
	fs.StringVar(&f.format, "format", "", "Output format: text, json, yaml (default from config: text)")
}

// load reads the repository config file and applies every flag that was
// set explicitly on top of it.
func (f *auditFlags) load(fs *pflag.FlagSet) (*config.File, error) {
	cfg, err := config.Load(f.basePath)
	if err != nil {
		return nil, err
	}

	if fs.Changed("languages") {
		cfg.Languages = config.ParseLanguages(f.languages)
	}
	if fs.Changed("hide-completed") {
		cfg.HideCompleted = f.hideCompleted
	}
	if fs.Changed("report") {
		cfg.Report = f.report
	}
	if fs.Changed("format") {
		cfg.Format = f.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// options builds audit options from the config file and the flags.
func (f *auditFlags) options(cfg *config.File) audit.Options {
	paths := cfg.Resolve(f.basePath)
	if f.packPath != "" {
		paths.Pack = f.packPath
	}
	if f.schemaPath != "" {
		paths.Schema = f.schemaPath
	}

	return audit.Options{
		BasePath:         filepath.Clean(paths.Base),
		PackPath:         paths.Pack,
		SchemaPath:       paths.Schema,
		TranslationsPath: paths.Translations,
		Languages:        cfg.Languages,
		IndexFiles:       cfg.IndexFiles,
		Fix:              f.fix,
		StrictFormatting: f.strictFormatting,
		UpdateLock:       f.updateLock,
	}
}
