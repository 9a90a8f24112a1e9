package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// KeyValueMap maps normalized attribute keys to their first-seen raw values.
// Insertion order is preserved so that substring scans over keys are
// deterministic.
type KeyValueMap struct {
	values map[string]string
	keys   []string
}

func newKeyValueMap() *KeyValueMap {
	return &KeyValueMap{values: make(map[string]string)}
}

// setDefault inserts the pair only if the key is not already present, so the
// first structural match wins over later, looser markup shapes.
func (m *KeyValueMap) setDefault(key, value string) {
	if key == "" {
		return
	}
	if _, ok := m.values[key]; ok {
		return
	}
	m.values[key] = value
	m.keys = append(m.keys, key)
}

// Get returns the value for an exact normalized key.
func (m *KeyValueMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Find returns the value of the first inserted key containing any of the
// given substrings.
func (m *KeyValueMap) Find(substrings ...string) (string, bool) {
	for _, k := range m.keys {
		for _, sub := range substrings {
			if strings.Contains(k, sub) {
				return m.values[k], true
			}
		}
	}
	return "", false
}

// Keys returns the normalized keys in insertion order.
func (m *KeyValueMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of stored pairs.
func (m *KeyValueMap) Len() int {
	return len(m.keys)
}

var keyJunk = regexp.MustCompile("[\\s:\u00a0]+")

// normKey trims, lower-cases, and collapses whitespace, colons, and
// non-breaking spaces to single spaces.
func normKey(k string) string {
	return strings.TrimSpace(keyJunk.ReplaceAllString(strings.ToLower(k), " "))
}

// KeyValues builds the per-page attribute map from a detail page's structured
// markup. Four shapes are scanned in fixed priority order: definition lists,
// two-column table rows, list items with a colon, and emphasis/inline tags
// with a colon.
func KeyValues(doc *goquery.Document) *KeyValueMap {
	kv := newKeyValueMap()

	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		key := normKey(nodeText(dt))
		dd := dt.NextAllFiltered("dd").First()
		if key != "" && dd.Length() > 0 {
			kv.setDefault(key, nodeText(dd))
		}
	})

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() < 2 {
			return
		}
		kv.setDefault(normKey(nodeText(cells.Eq(0))), nodeText(cells.Eq(1)))
	})

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		addColonPair(kv, nodeText(li))
	})

	doc.Find("strong, b, span").Each(func(_ int, tag *goquery.Selection) {
		addColonPair(kv, nodeText(tag))
	})

	return kv
}

func addColonPair(kv *KeyValueMap, text string) {
	if !strings.Contains(text, ":") {
		return
	}
	parts := strings.SplitN(text, ":", 2)
	kv.setDefault(normKey(parts[0]), strings.TrimSpace(parts[1]))
}

// nodeText returns the selection's text with internal whitespace collapsed to
// single spaces.
func nodeText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
