// Package config implements discovery of locales and data files in a card
// data repository laid out as:
//
//	cycles.json, packs.json, ...        index files
//	pack/<cycle>/<pack>.json            card files
//	translations/<locale>/...           localized copies of the above
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CheckDir returns an error unless path is a readable directory.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a valid path", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s is not a readable directory", path)
	}
	f.Close()
	return nil
}

// ParseLanguages splits a comma-separated locale list, dropping blanks.
func ParseLanguages(s string) []string {
	var langs []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			langs = append(langs, part)
		}
	}
	return langs
}

// DetectLanguages returns the locale subdirectories of dir in sorted order.
// Hidden entries and plain files are skipped.
func DetectLanguages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		langs = append(langs, name)
	}
	sort.Strings(langs)
	return langs, nil
}

// PackFiles lists pack/<cycle>/*.json as paths relative to base, sorted by
// cycle and file name. Other files found in cycle directories are returned
// in skipped.
func PackFiles(base, packDir string) (files, skipped []string, err error) {
	rel, err := filepath.Rel(base, packDir)
	if err != nil {
		rel = packDir
	}

	cycles, err := os.ReadDir(packDir)
	if err != nil {
		return nil, nil, err
	}

	for _, cycle := range cycles {
		if !cycle.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(packDir, cycle.Name()))
		if err != nil {
			return nil, nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(rel, cycle.Name(), entry.Name())
			if !strings.HasSuffix(entry.Name(), ".json") {
				skipped = append(skipped, path)
				continue
			}
			files = append(files, path)
		}
	}

	return files, skipped, nil
}

// IgnorePath returns the ignore sidecar of a localized file:
// "core.json" -> "core.ignore".
func IgnorePath(localizedPath string) string {
	return strings.TrimSuffix(localizedPath, ".json") + ".ignore"
}
