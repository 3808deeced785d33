package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed catalog_en.txt catalog_pt.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
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

// CatalogLines returns the raw catalog lines for a language ("en", "pt").
// Each line has the form CATEGORY:WORD,WORD,...
func CatalogLines(lang string) ([]string, error) {
	return readLines("catalog_" + lang + ".txt")
}
