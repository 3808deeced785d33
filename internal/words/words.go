// internal/words/words.go
//
// Provides the per-language category catalog for the match engine.
//
// Responsibilities:
//   - Load category → word-list catalogs from environment-provided files
//     or fall back to embedded defaults (assets package).
//   - Validate that every known category has at least one word.
//   - Supply lookups: Catalog, Categories, IsCategory, Stats.
//
// Catalog file format (one category per line):
//   CATEGORY:WORD,WORD,WORD
//
// Initialization behavior (Init):
//   1. For each supported language, if CATALOG_FILE_<LANG> is set, load
//      the catalog from that file.
//   2. Otherwise load the embedded default for that language.
//
// Environment variables:
//   CATALOG_FILE_EN=/path/to/catalog_en.txt
//   CATALOG_FILE_PT=/path/to/catalog_pt.txt
//
// Constraints:
//   • Words are normalized to uppercase ASCII.
//   • Every category listed in Categories() must be present and
//     non-empty in every language — an incomplete catalog is a
//     configuration error, reported by Init, never papered over.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/forcaduo/server/assets"
)

// DefaultLanguage is used when a caller does not name a language.
// Portuguese is the default locale.
const DefaultLanguage = "pt"

// Languages lists the supported catalog languages.
var Languages = []string{"en", "pt"}

// categories is the fixed enumerated category set, in display order.
var categories = []string{
	"ANIMALS", "CITIES", "FRUITS", "COUNTRIES", "PROFESSIONS", "MOVIES",
	"SPORTS", "FAMOUS_BRANDS", "MUSICAL_INSTRUMENTS", "THINGS_IN_A_HOUSE",
}

var (
	initOnce   sync.Once
	catalogs   map[string]map[string][]string // lang → category → words
	initialErr error
)

// Init loads all language catalogs exactly once.
func Init() error {
	initOnce.Do(func() {
		catalogs = make(map[string]map[string][]string, len(Languages))
		for _, lang := range Languages {
			var lines []string
			var err error

			if path := os.Getenv("CATALOG_FILE_" + strings.ToUpper(lang)); path != "" {
				lines, err = readCatalogFile(path)
			} else {
				lines, err = assets.CatalogLines(lang)
			}
			if err != nil {
				initialErr = fmt.Errorf("catalog %s: %w", lang, err)
				return
			}

			cat, err := parseCatalog(lines)
			if err != nil {
				initialErr = fmt.Errorf("catalog %s: %w", lang, err)
				return
			}
			for _, c := range categories {
				if len(cat[c]) == 0 {
					initialErr = fmt.Errorf("catalog %s: category %s is empty", lang, c)
					return
				}
			}
			catalogs[lang] = cat
		}
	})
	return initialErr
}

// readCatalogFile loads raw catalog lines from a file, skipping blanks
// and '#' comments.
func readCatalogFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// parseCatalog converts CATEGORY:WORD,WORD lines into a lookup map.
func parseCatalog(lines []string) (map[string][]string, error) {
	out := make(map[string][]string, len(categories))
	for _, line := range lines {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.New("malformed line: " + line)
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		var list []string
		for _, w := range strings.Split(rest, ",") {
			w = strings.ToUpper(strings.TrimSpace(w))
			if w != "" {
				list = append(list, w)
			}
		}
		out[name] = append(out[name], list...)
	}
	return out, nil
}

// Catalog returns the category → word-list map for a language. Unknown
// languages fall back to DefaultLanguage. The returned map must not be
// mutated.
func Catalog(lang string) map[string][]string {
	if c, ok := catalogs[strings.ToLower(lang)]; ok {
		return c
	}
	return catalogs[DefaultLanguage]
}

// Categories returns the fixed category keys in display order.
func Categories() []string {
	return append([]string(nil), categories...)
}

// IsCategory reports whether c is one of the known category keys.
func IsCategory(c string) bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

// Stats returns counts of loaded data: (languages, total words).
func Stats() (langCount int, wordCount int) {
	for _, cat := range catalogs {
		for _, list := range cat {
			wordCount += len(list)
		}
	}
	return len(catalogs), wordCount
}
