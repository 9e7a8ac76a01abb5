// i18nstats — localization completeness auditor for card data JSON repositories.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cardjson/i18nstats/audit"
	"github.com/cardjson/i18nstats/config"
	"github.com/cardjson/i18nstats/console"
	"github.com/cardjson/i18nstats/i18n"
	"github.com/cardjson/i18nstats/langmeta"
	"github.com/cardjson/i18nstats/lockfile"
	"github.com/cardjson/i18nstats/report"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errLog = console.New(os.Stderr, 0)

func logError(format string, args ...any) {
	errLog.Errorf(format, args...)
}

// errFindings makes the process exit with status 1 after a complete run
// that counted formatting or validation errors.
var errFindings = errors.New("formatting or validation errors found")

// ---------------------------------------------------------------------------
// Root command (audit)
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	f := &auditFlags{}

	root := &cobra.Command{
		Use:   "i18nstats [flags] [i18n_files...]",
		Short: "Check translation completeness of a card data repository",
		Long: `i18nstats compares every localized JSON file under translations/<locale>/
with its source file and reports translated, untranslated and missing card
text. It also checks that every file it reads is canonically formatted.

Without arguments all pack and index files are checked against all locales.
Files under translations/<locale>/ are checked against that locale only;
other files are checked against every locale.

Commands:
  format      Check or rewrite canonical JSON formatting
  locales     List locales and their overall progress
  version     Show version information

Exit status is 0 only when no formatting or validation error was found.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, f, args)
		},
	}

	root.SetGlobalNormalizationFunc(normalizeFlagName)
	f.registerShared(root.PersistentFlags())
	f.registerAudit(root.Flags())

	_ = root.RegisterFlagCompletionFunc("report", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ReportCompact, config.ReportVerbose}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatText, config.FormatJSON, config.FormatYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newFormatCmd(f),
		newLocalesCmd(f),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			logError("%v", err)
		}
		os.Exit(1)
	}
}

func runAudit(cmd *cobra.Command, f *auditFlags, args []string) error {
	cfg, err := f.load(cmd.Flags())
	if err != nil {
		return err
	}
	opts := f.options(cfg)

	// Machine-readable reports own stdout; everything else goes to stderr.
	out := cmd.OutOrStdout()
	logOut := out
	if cfg.Format != config.FormatText {
		logOut = cmd.ErrOrStderr()
	}
	printer := console.New(logOut, f.verbose)

	lock, err := lockfile.Load(opts.BasePath)
	if err != nil {
		return err
	}
	opts.Lock = lock

	a := audit.New(opts, printer)
	if err := a.CheckAccess(); err != nil {
		return err
	}

	var collection report.Collection
	var writeErr error
	emit := func(s *report.Stats) {
		var err error
		switch {
		case cfg.Format != config.FormatText:
			collection.Add(s)
		case cfg.Report == config.ReportVerbose:
			err = s.Print(out, cfg.HideCompleted)
		default:
			err = s.PrintShort(out, cfg.HideCompleted)
		}
		if err != nil && writeErr == nil {
			writeErr = err
		}
	}

	counters, err := a.Run(args, emit)
	if err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("writing report: %w", writeErr)
	}

	if cfg.Format != config.FormatText {
		if err := collection.Encode(out, cfg.Format); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if f.updateLock {
		a.PruneLock()
		if err := lock.Save(); err != nil {
			return err
		}
		printer.Infof(1, "%s", i18n.Tf("Lock file %s updated (%s)", lock.Path(), lock.Summary()))
	}

	return summarize(logOut, counters)
}

// summarize prints the final error counts.
func summarize(w io.Writer, c audit.Counters) error {
	fmt.Fprintln(w, i18n.Tf("Found %d formatting and %d validation errors", c.Formatting, c.Validation))
	if !c.OK() {
		return errFindings
	}
	return nil
}

// ---------------------------------------------------------------------------
// format (canonical JSON check / rewrite)
// ---------------------------------------------------------------------------

func newFormatCmd(f *auditFlags) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "format [--write] files...",
		Short: "Check or rewrite canonical JSON formatting",
		Long: `Check that each file holds canonical JSON: sorted keys, tab indentation,
ASCII quotes and dashes, and a single trailing newline.

Every non-canonical file counts as a formatting error. With --write the files
are rewritten instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a := audit.New(audit.Options{Fix: write}, console.New(out, f.verbose))
			return summarize(out, a.CheckFormatting(args))
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite non-canonical files in place")

	return cmd
}

// ---------------------------------------------------------------------------
// locales (discovered locales + progress)
// ---------------------------------------------------------------------------

func newLocalesCmd(f *auditFlags) *cobra.Command {
	var stats, all bool

	cmd := &cobra.Command{
		Use:   "locales",
		Short: "List locales and their overall progress",
		Long: `List the locales found under the translations directory (or given with
--languages) with their display names. With --all, every locale with known
display metadata is listed instead. With --stats, every data file is
compared and the overall translated share is shown per locale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocales(cmd, f, stats, all)
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "Show translation progress per locale")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every known locale, not only those found")

	return cmd
}

func runLocales(cmd *cobra.Command, f *auditFlags, withStats, all bool) error {
	cfg, err := f.load(cmd.Flags())
	if err != nil {
		return err
	}
	opts := f.options(cfg)
	out := cmd.OutOrStdout()

	a := audit.New(opts, console.New(cmd.ErrOrStderr(), f.verbose-1))
	langs := langmeta.Known()
	if !all {
		if langs, err = a.Locales(); err != nil {
			return err
		}
	}
	if len(langs) == 0 {
		fmt.Fprintln(out, i18n.Tf("No locales found in %s", opts.TranslationsPath))
		return nil
	}

	var files []string
	if withStats {
		if err := a.CheckAccess(); err != nil {
			return err
		}
		if files, err = a.AllFiles(); err != nil {
			return err
		}
	}

	width := langColumnWidth(langs)
	for _, lang := range langs {
		if !withStats {
			fmt.Fprintf(out, "%s  %s\n", langCell(lang, width), langmeta.Resolve(lang).Name)
			continue
		}

		translated, total := 0, 0
		a.CheckTranslations(audit.Locale{Name: lang, Base: opts.TranslationsPath}, files, func(s *report.Stats) {
			translated += s.Translated
			total += s.Total
		})
		p := percent(translated, total)
		fmt.Fprintf(out, "%s  %s (%d / %d)\n", langCell(lang, width),
			percentColor(p).Sprint(progressBar(p, 20)), translated, total)
	}

	fmt.Fprintln(out, strings.Repeat("─", 44))
	fmt.Fprintln(out, i18n.Nf("%d locale", "%d locales", len(langs), len(langs)))
	return nil
}

func percent(part, total int) int {
	if total == 0 {
		return 100
	}
	return part * 100 / total
}

// progressBar renders a fixed-width bar followed by the percentage.
func progressBar(p, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	filled := p * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %3d%%", p)
}

func percentColor(p int) *color.Color {
	switch {
	case p >= 100:
		return color.New(color.FgGreen)
	case p >= 50:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}

func langColumnWidth(langs []string) int {
	width := 0
	for _, lang := range langs {
		if len(lang) > width {
			width = len(lang)
		}
	}
	return width
}

// langCell renders the flag and the padded locale code.
func langCell(lang string, width int) string {
	flag := langmeta.Resolve(lang).Flag
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, lang)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, build date and the message language.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "i18nstats version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
			fmt.Fprintf(out, "  messages:  %s (catalogs: %s)\n", i18n.Language(), strings.Join(i18n.Available(), ", "))
		},
	}

	return cmd
}
