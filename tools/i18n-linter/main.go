// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files against the source tree. It reports
// keys used in code but missing from a locale, keys no code uses, and
// translations whose format verbs differ from the primary locale, since
// i18n.T applies its arguments with fmt.Sprintf.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "active.nl.yaml"
	projectRoot   = "."
)

func main() {
	os.Exit(run(projectRoot, localesDir, primaryLocale, os.Stdout))
}

// report collects the findings of one run.
type report struct {
	missing  map[string][]string // locale file -> keys
	orphaned []string
	verbs    []string
}

func (r *report) failed() bool {
	return len(r.missing) > 0 || len(r.verbs) > 0
}

// run lints root and returns the process exit code. Orphaned keys are a
// warning; missing keys and format verb mismatches fail.
func run(root, locales, primary string, w io.Writer) int {
	used, err := findUsedKeys(root)
	if err != nil {
		fmt.Fprintf(w, "error scanning sources: %v\n", err)
		return 1
	}
	files, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil || len(files) == 0 {
		fmt.Fprintf(w, "no locale files in %s\n", locales)
		return 1
	}
	base, err := loadLocale(filepath.Join(locales, primary))
	if err != nil {
		fmt.Fprintf(w, "error loading primary locale %s: %v\n", primary, err)
		return 1
	}

	r := &report{missing: map[string][]string{}}
	for key := range used {
		if _, ok := base[key]; !ok {
			r.missing[primary] = append(r.missing[primary], key)
		}
	}
	for key := range base {
		if _, ok := used[key]; !ok {
			r.orphaned = append(r.orphaned, key)
		}
	}
	for _, file := range files {
		name := filepath.Base(file)
		if name == primary {
			continue
		}
		other, err := loadLocale(file)
		if err != nil {
			fmt.Fprintf(w, "error loading %s: %v\n", name, err)
			return 1
		}
		for key, text := range base {
			t, ok := other[key]
			if !ok {
				r.missing[name] = append(r.missing[name], key)
				continue
			}
			if a, b := formatVerbs(text), formatVerbs(t); a != b {
				r.verbs = append(r.verbs, fmt.Sprintf("%s %s: %q vs %q", name, key, a, b))
			}
		}
	}

	r.print(w, len(used), len(base))
	if r.failed() {
		return 1
	}
	return 0
}

func (r *report) print(w io.Writer, used, keys int) {
	fmt.Fprintf(w, "%d keys used in code, %d keys in the primary locale\n", used, keys)

	locales := make([]string, 0, len(r.missing))
	for name := range r.missing {
		locales = append(locales, name)
	}
	sort.Strings(locales)
	for _, name := range locales {
		keys := r.missing[name]
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "missing in %s: %s\n", name, k)
		}
	}
	sort.Strings(r.verbs)
	for _, v := range r.verbs {
		fmt.Fprintf(w, "format verbs differ in %s\n", v)
	}
	sort.Strings(r.orphaned)
	for _, k := range r.orphaned {
		fmt.Fprintf(w, "warning: unused key %s\n", k)
	}
	if !r.failed() && len(r.orphaned) == 0 {
		fmt.Fprintln(w, "all translation files are consistent")
	}
}

var (
	callRe = regexp.MustCompile(`i18n\.T\(\s*"([^"]+)"`)
	verbRe = regexp.MustCompile(`%[-+# 0]*\d*(?:\.\d+)?[a-zA-Z]`)
)

// findUsedKeys returns every literal key passed to i18n.T outside tests,
// the tools directory and hidden or underscore-prefixed directories.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range callRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// formatVerbs returns the fmt verbs of s in order, e.g. "%s %d".
func formatVerbs(s string) string {
	s = strings.ReplaceAll(s, "%%", "")
	return strings.Join(verbRe.FindAllString(s, -1), " ")
}

// loadLocale reads a nested YAML locale into dot-separated key -> text.
func loadLocale(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", data, out)
	return out, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val, out)
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}
