package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	equipmentHead = regexp.MustCompile(`(?i)Комплектация[:\s\-–—]{0,3}([^\n]{5,1000}[^\n]{0,1000})`)
	equipmentItem = regexp.MustCompile(`[;,]\s*`)
	titleSpec     = regexp.MustCompile(`(?i)(\d+[.,]?\d*\s*(?:л|l)[^\n,;]{0,30})`)
)

// equipmentFromSection prefers an explicit equipment/trim section: the list
// following a heading that mentions it, or the text block up to the next
// heading.
func equipmentFromSection(p *page) (string, bool) {
	result := ""
	p.doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(nodeText(h)), "комплектац") {
			return true
		}
		list := h.NextAllFiltered("ul, ol").First()
		if list.Length() > 0 {
			var items []string
			list.Find("li").Each(func(_ int, li *goquery.Selection) {
				if t := nodeText(li); t != "" {
					items = append(items, t)
				}
			})
			if len(items) > 0 {
				result = strings.Join(items, "; ")
				return false
			}
		}
		if block := nodeText(h.NextUntil("h1, h2, h3, h4, h5, h6")); block != "" {
			result = block
			return false
		}
		return true
	})
	return result, result != ""
}

// equipmentFromText captures the line following the equipment keyword in the
// page's visible text and re-joins its comma/semicolon items.
func equipmentFromText(p *page) (string, bool) {
	m := equipmentHead.FindStringSubmatch(p.doc.Text())
	if m == nil {
		return "", false
	}
	var items []string
	for _, it := range equipmentItem.Split(m[1], -1) {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return "", false
	}
	return strings.Join(items, "; "), true
}

// equipmentFromTitle is the last resort: a short displacement-plus-trim spec
// embedded in the title, like "1.6 MT Comfort".
func equipmentFromTitle(p *page) (string, bool) {
	m := titleSpec.FindStringSubmatch(p.rawTitle)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
