package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Pick returns the deterministic category and word for a date using
// HMAC(salt, YYYY-MM-DD). The first eight digest bytes select the
// category, the next eight the word, so every device agrees on the
// day's match without coordination.
func Pick(date time.Time, salt string, categories []string, catalog map[string][]string) (category, word string) {
	if len(categories) == 0 {
		return "", ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)

	ci := binary.BigEndian.Uint64(sum[:8])
	category = categories[ci%uint64(len(categories))]

	list := catalog[category]
	if len(list) == 0 {
		return category, ""
	}
	wi := binary.BigEndian.Uint64(sum[8:16])
	return category, list[wi%uint64(len(list))]
}
