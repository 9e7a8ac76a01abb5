// Package audit drives a localization audit over a card data repository.
//
// It loads source files, their localized copies under
// translations/<locale>/ and the optional .ignore sidecars, compares them
// and hands one report.Stats per (locale, file) to the caller. Every
// operation returns the Counters it produced; nothing is kept globally.
package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cardjson/i18nstats/canonjson"
	"github.com/cardjson/i18nstats/cards"
	"github.com/cardjson/i18nstats/compare"
	"github.com/cardjson/i18nstats/config"
	"github.com/cardjson/i18nstats/console"
	"github.com/cardjson/i18nstats/i18n"
	"github.com/cardjson/i18nstats/lockfile"
	"github.com/cardjson/i18nstats/report"
)

// Options configure an Auditor. Paths may be relative to the working
// directory; data file names are always relative to BasePath.
type Options struct {
	BasePath         string
	PackPath         string
	SchemaPath       string
	TranslationsPath string

	// Languages limits the audit to these locales. Empty means every
	// directory under TranslationsPath.
	Languages []string
	// IndexFiles are checked after the pack files.
	IndexFiles []string

	// Fix rewrites non-canonical files in place.
	Fix bool
	// StrictFormatting counts non-canonical files as formatting errors.
	StrictFormatting bool

	// Lock, when set, is used to flag outdated translations.
	Lock *lockfile.LockFile
	// UpdateLock records the current source text of translated fields.
	UpdateLock bool
}

// Counters are the error totals of an operation.
type Counters struct {
	Formatting int
	Validation int
}

// Add accumulates o into c.
func (c *Counters) Add(o Counters) {
	c.Formatting += o.Formatting
	c.Validation += o.Validation
}

// OK reports whether no error was counted.
func (c Counters) OK() bool {
	return c.Formatting == 0 && c.Validation == 0
}

// Locale is one translation target directory.
type Locale struct {
	Name string
	// Base is the translations directory holding the locale.
	Base string
}

// ResolvePath maps a source file name onto its localized copy.
func (l Locale) ResolvePath(file string) string {
	return filepath.Join(l.Base, l.Name, file)
}

// Emit receives the statistics of each checked (locale, file) pair.
type Emit func(*report.Stats)

// Auditor runs audit operations.
type Auditor struct {
	opts Options
	log  *console.Printer
}

// New returns an Auditor. Missing pack, schema and translations paths
// default to their conventional directories under BasePath.
func New(opts Options, log *console.Printer) *Auditor {
	if opts.BasePath == "" {
		opts.BasePath = "."
	}
	if opts.PackPath == "" {
		opts.PackPath = filepath.Join(opts.BasePath, config.DefaultPackDir)
	}
	if opts.SchemaPath == "" {
		opts.SchemaPath = filepath.Join(opts.BasePath, config.DefaultSchemaDir)
	}
	if opts.TranslationsPath == "" {
		opts.TranslationsPath = filepath.Join(opts.BasePath, config.DefaultTranslationsDir)
	}
	if opts.IndexFiles == nil {
		opts.IndexFiles = config.DefaultIndexFiles
	}
	if log == nil {
		log = console.Discard()
	}
	return &Auditor{opts: opts, log: log}
}

// Options returns the effective options.
func (a *Auditor) Options() Options {
	return a.opts
}

// CheckAccess verifies that the base, schema and pack directories are
// readable. A failure is fatal for the whole audit.
func (a *Auditor) CheckAccess() error {
	for _, dir := range []string{a.opts.BasePath, a.opts.SchemaPath, a.opts.PackPath} {
		if err := config.CheckDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

func isReadableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LoadJSON reads path and checks it against the canonical form. A nil value
// is returned when the file could not be used.
func (a *Auditor) LoadJSON(path string) (any, Counters) {
	var c Counters

	doc, err := canonjson.LoadFile(path, canonjson.LoadOptions{Fix: a.opts.Fix})
	var werr *canonjson.WriteError
	switch {
	case errors.As(err, &werr):
		a.log.Errorf("%v", werr)
	case err != nil:
		a.log.Errorf("%v", err)
		c.Validation++
		return nil, c
	}

	if !doc.Formatted() {
		a.log.Infof(1, "%s: file is not correctly formatted JSON", path)
		switch {
		case a.opts.Fix && werr == nil:
			a.log.Infof(0, "%s: Fixing JSON formatting...", path)
		case a.opts.StrictFormatting:
			c.Formatting++
		}
	}
	return doc.Value, c
}

// LoadRecords loads a record list. A missing file yields no records and no
// error count.
func (a *Auditor) LoadRecords(path string) ([]cards.Record, Counters) {
	if !isReadableFile(path) {
		a.log.Warnf(1, "could not load %s", path)
		return nil, Counters{}
	}

	v, c := a.LoadJSON(path)
	if v == nil {
		return nil, c
	}
	records, err := cards.Records(v)
	if err != nil {
		a.log.Errorf("%s: %v", path, err)
		c.Validation++
		return nil, c
	}
	return records, c
}

// LoadMapping loads path and builds its field mapping, logging every
// warning found on the way. The returned total is the number of field
// values in the mapping.
func (a *Auditor) LoadMapping(path string, opts cards.BuildOptions) (cards.Mapping, int, Counters) {
	records, c := a.LoadRecords(path)

	m, total, warnings := cards.Build(records, opts)
	extra := false
	for _, w := range warnings {
		a.log.Warnf(0, "%s in %s", w, path)
		if w.Kind == cards.ExtraFields {
			extra = true
		}
	}
	if extra && a.log.Enabled(1) {
		a.log.Printf(1, "json without extra entries:\n%s", canonjson.MustFormat(cards.Flatten(m)))
	}
	return m, total, c
}

// ---------------------------------------------------------------------------
// Index files
// ---------------------------------------------------------------------------

// Pack is one entry of packs.json.
type Pack struct {
	Code      string
	CycleCode string
	// Player is set when pack/<cycle>/<code>.json exists.
	Player bool
	// Encounter is set when pack/<cycle>/<code>_encounter.json exists.
	Encounter bool
}

// Index holds the cycle and pack index files.
type Index struct {
	Cycles []cards.Record
	Packs  []Pack
}

// Empty reports whether either index is missing or empty.
func (ix *Index) Empty() bool {
	return len(ix.Cycles) == 0 || len(ix.Packs) == 0
}

// LoadIndex loads cycles.json and packs.json. The "promotional" cycle lives
// in the "promo" directory.
func (a *Auditor) LoadIndex() (*Index, Counters) {
	var c Counters
	ix := &Index{}

	a.log.Printf(1, "Loading cycle index file...\n")
	cycles, cc := a.LoadRecords(filepath.Join(a.opts.BasePath, "cycles.json"))
	c.Add(cc)
	ix.Cycles = cycles

	a.log.Printf(1, "Loading pack index file...\n")
	packs, pc := a.LoadRecords(filepath.Join(a.opts.BasePath, "packs.json"))
	c.Add(pc)

	for _, r := range packs {
		cycle, _ := r["cycle_code"].(string)
		if cycle == "promotional" {
			cycle = "promo"
		}
		p := Pack{Code: r.Code(), CycleCode: cycle}
		dir := filepath.Join(a.opts.PackPath, cycle)
		p.Player = isReadableFile(filepath.Join(dir, p.Code+".json"))
		p.Encounter = isReadableFile(filepath.Join(dir, p.Code+"_encounter.json"))
		ix.Packs = append(ix.Packs, p)
	}
	return ix, c
}

// ---------------------------------------------------------------------------
// Comparing
// ---------------------------------------------------------------------------

// displayPath shows path relative to the base directory when possible.
func (a *Auditor) displayPath(path string) string {
	if rel, err := filepath.Rel(a.opts.BasePath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// CompareFile compares one source file with its copy in locale.
func (a *Auditor) CompareFile(locale Locale, file string) (*report.Stats, Counters) {
	var c Counters

	source, total, sc := a.LoadMapping(filepath.Join(a.opts.BasePath, file), cards.BuildOptions{})
	c.Add(sc)
	if total == 0 {
		a.log.Infof(1, "%s: no translatable strings in %s", locale.Name, file)
	}

	locPath := locale.ResolvePath(file)
	localized, _, lc := a.LoadMapping(locPath, cards.BuildOptions{WarnExtra: true})
	c.Add(lc)

	ignore, _, ic := a.LoadMapping(config.IgnorePath(locPath), cards.BuildOptions{})
	c.Add(ic)

	res := compare.Compare(source, localized, ignore)
	if len(res.Extra) > 0 {
		a.log.Warnf(0, "extra entries in %s: %s", locPath, strings.Join(res.Extra, ", "))
		for _, code := range res.Extra {
			a.log.Printf(0, "%s: unexpected translated entry: %s\n", locale.Name, code)
		}
	}
	if res.Ignored > 0 {
		a.log.Infof(2, "%s: %d values accepted by %s", locale.Name, res.Ignored, config.IgnorePath(locPath))
	}
	if len(res.Missing) > 0 && a.log.Enabled(1) {
		a.log.Printf(1, "missing json:\n%s", canonjson.MustFormat(cards.Flatten(res.Missing)))
	}
	if len(res.Untranslated) > 0 && a.log.Enabled(1) {
		a.log.Printf(1, "untranslated json:\n%s", canonjson.MustFormat(cards.Flatten(res.Untranslated)))
	}

	stats := &report.Stats{
		Locale: locale.Name,
		File:   filepath.ToSlash(file),
		Path:   a.displayPath(locPath),
		Result: res,
	}
	a.applyLock(stats)
	return stats, c
}

// applyLock flags translated fields whose source changed since the lock
// file recorded them, and records the current state when asked to.
func (a *Auditor) applyLock(stats *report.Stats) {
	lock := a.opts.Lock
	if lock == nil {
		return
	}

	target := lockfile.TargetKey(stats.Locale, stats.File)
	entries := make(map[string]string)
	for code, fields := range stats.TranslatedFields {
		for field, value := range fields {
			entries[lockfile.FieldKey(code, field)] = value
		}
	}

	for _, key := range lock.Outdated(target, entries) {
		if stats.Outdated == nil {
			stats.Outdated = make(cards.Mapping)
		}
		code, field := lockfile.SplitFieldKey(key)
		stats.Outdated.Set(code, field, entries[key])
	}

	if a.opts.UpdateLock {
		lock.Replace(target, entries)
	}
}

// PruneLock drops lock targets whose source file or localized copy no
// longer exists and returns their keys.
func (a *Auditor) PruneLock() []string {
	lock := a.opts.Lock
	if lock == nil {
		return nil
	}

	var removed []string
	for _, target := range lock.Targets() {
		name, file := lockfile.SplitTargetKey(target)
		locale := Locale{Name: name, Base: a.opts.TranslationsPath}
		if isReadableFile(filepath.Join(a.opts.BasePath, file)) && isReadableFile(locale.ResolvePath(file)) {
			continue
		}
		lock.RemoveTarget(target)
		a.log.Infof(1, "Dropping %s from the lock file", target)
		removed = append(removed, target)
	}
	return removed
}

// ---------------------------------------------------------------------------
// File and locale selection
// ---------------------------------------------------------------------------

// AllFiles lists every source data file: pack/<cycle>/*.json followed by
// the index files.
func (a *Auditor) AllFiles() ([]string, error) {
	files, skipped, err := config.PackFiles(a.opts.BasePath, a.opts.PackPath)
	if err != nil {
		return nil, fmt.Errorf("listing pack files: %w", err)
	}
	for _, s := range skipped {
		a.log.Infof(1, "Ignoring non-json file %s", s)
	}
	return append(files, a.opts.IndexFiles...), nil
}

// Locales returns the locales to audit.
func (a *Auditor) Locales() ([]string, error) {
	if len(a.opts.Languages) > 0 {
		return a.opts.Languages, nil
	}
	langs, err := config.DetectLanguages(a.opts.TranslationsPath)
	if err != nil {
		return nil, fmt.Errorf("listing locales: %w", err)
	}
	return langs, nil
}

// CheckTranslations compares every file against one locale.
func (a *Auditor) CheckTranslations(locale Locale, files []string, emit Emit) Counters {
	var c Counters
	for _, file := range files {
		stats, fc := a.CompareFile(locale, file)
		c.Add(fc)
		if emit != nil {
			emit(stats)
		}
	}
	return c
}

// CheckAllLocales compares every file against every selected locale.
func (a *Auditor) CheckAllLocales(files []string, emit Emit) (Counters, error) {
	var c Counters
	langs, err := a.Locales()
	if err != nil {
		return c, err
	}
	a.log.Infof(1, "Processing %s...", strings.Join(langs, ", "))

	for _, name := range langs {
		locale := Locale{Name: name, Base: a.opts.TranslationsPath}
		c.Add(a.CheckTranslations(locale, files, emit))
	}
	return c, nil
}

// CheckFileList checks explicitly named files. A file under
// translations/<locale>/ is checked against that locale only; any other
// file is taken as a source file and checked against every locale.
func (a *Auditor) CheckFileList(paths []string, emit Emit) (Counters, error) {
	var c Counters

	absTranslations, err := filepath.Abs(a.opts.TranslationsPath)
	if err != nil {
		return c, err
	}
	absBase, err := filepath.Abs(a.opts.BasePath)
	if err != nil {
		return c, err
	}

	for _, f := range paths {
		abs, err := filepath.Abs(f)
		if err != nil {
			return c, err
		}

		if rel, ok := within(absTranslations, abs); ok {
			parts := strings.Split(filepath.ToSlash(rel), "/")
			if len(parts) < 2 {
				a.log.Warnf(0, "cannot process %s", f)
				continue
			}
			locale := Locale{Name: parts[0], Base: a.opts.TranslationsPath}
			c.Add(a.CheckTranslations(locale, []string{strings.Join(parts[1:], "/")}, emit))
			continue
		}

		file := f
		if rel, ok := within(absBase, abs); ok {
			file = rel
		}
		fc, err := a.CheckAllLocales([]string{file}, emit)
		c.Add(fc)
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

// within returns path relative to dir when it lies below dir.
func within(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// Run performs a full audit. With no paths every data file is checked
// against every selected locale. Card checks are skipped when the cycle or
// pack index is missing or empty.
func (a *Auditor) Run(paths []string, emit Emit) (Counters, error) {
	ix, c := a.LoadIndex()
	if ix.Empty() {
		a.log.Printf(0, "%s\n", i18n.T("Skipping card validation..."))
		return c, nil
	}

	if len(paths) == 0 {
		files, err := a.AllFiles()
		if err != nil {
			return c, err
		}
		fc, err := a.CheckAllLocales(files, emit)
		c.Add(fc)
		return c, err
	}

	a.log.Infof(1, "i18n files: %s", strings.Join(paths, ", "))
	fc, err := a.CheckFileList(paths, emit)
	c.Add(fc)
	return c, err
}

// CheckFormatting verifies that each path holds canonical JSON, rewriting it
// when Fix is set. Unlike the audit, every non-canonical file counts as a
// formatting error unless it was rewritten.
func (a *Auditor) CheckFormatting(paths []string) Counters {
	var c Counters
	for _, path := range paths {
		doc, err := canonjson.LoadFile(path, canonjson.LoadOptions{Fix: a.opts.Fix})
		var werr *canonjson.WriteError
		switch {
		case errors.As(err, &werr):
			a.log.Errorf("%v", werr)
		case err != nil:
			a.log.Errorf("%v", err)
			c.Validation++
			continue
		}

		if doc.Formatted() {
			a.log.Infof(1, "%s: ok", path)
			continue
		}
		if a.opts.Fix && werr == nil {
			a.log.Infof(0, "%s: Fixing JSON formatting...", path)
			continue
		}
		c.Formatting++
		a.log.Warnf(0, "%s: file is not correctly formatted JSON", path)
	}
	return c
}
