package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dromcrawl/pkg/types"
)

var (
	salePrefix = regexp.MustCompile(`(?i)^\s*(?:продажа|продаю|продается|продам)[\s:\-–—]+`)
	yearToken  = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	yearWord   = regexp.MustCompile(`(?i)(?:^|\s)год(?:[^\p{L}][^.,\-–—]*|$)`)
	cityPhrase = regexp.MustCompile(`(?:^|\s)в\s+[А-Яа-яЁёA-Za-z][А-Яа-яЁёA-Za-z\-\s]{1,29}`)
	titleJunk  = regexp.MustCompile(`[\s,\-–—:]+`)

	crumbJunk = regexp.MustCompile(`(?i)продаж|прода|в\s+москв|в\s+санкт|город`)

	genParen = regexp.MustCompile(`(?i)\(([^)]*поколен[^)]*)\)`)
	genRoman = regexp.MustCompile(`\(([IVX]{1,4})\)`)
	genDigit = regexp.MustCompile(`(?i)поколен(?:ие)?[^0-9]{0,10}([0-9]+)`)
	restyled = regexp.MustCompile(`(?i)рестайл`)
)

// pageTitle locates the listing title, preferring the main heading over the
// marker element and template-specific classes.
func pageTitle(doc *goquery.Document) string {
	for _, sel := range []string{"h1", `[data-ftid="bull_title"]`, ".offer-title"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if t := nodeText(s); t != "" {
				return t
			}
		}
	}
	return ""
}

// cleanTitle strips sale boilerplate, pulls out a plausible model year, and
// removes trailing city phrasing, leaving text suitable for brand/model
// splitting. The year is cut from the title so it cannot pollute the model.
func cleanTitle(rawTitle string) (string, types.OptionalInt) {
	t := salePrefix.ReplaceAllString(rawTitle, "")
	t = strings.TrimSpace(t)

	var year types.OptionalInt
	if loc := yearToken.FindStringIndex(t); loc != nil {
		if y, err := strconv.Atoi(t[loc[0]:loc[1]]); err == nil {
			year = types.IntValue(y)
		}
		t = strings.TrimSpace(t[:loc[0]])
	}

	t = yearWord.ReplaceAllString(t, " ")
	t = cityPhrase.ReplaceAllString(t, " ")
	t = strings.TrimSpace(titleJunk.ReplaceAllString(t, " "))
	return t, year
}

// brandModel resolves brand and model, preferring breadcrumb navigation with
// boilerplate and city entries filtered out, then falling back to splitting
// the cleaned title.
func brandModel(p *page) (string, string) {
	brand, model := types.UnknownSentinel, types.UnknownSentinel

	var crumbs []string
	p.doc.Find(".breadcrumbs a, .c-breadcrumbs a, nav.breadcrumbs a, .breadcrumb a").Each(func(_ int, s *goquery.Selection) {
		t := nodeText(s)
		if t != "" && !crumbJunk.MatchString(t) {
			crumbs = append(crumbs, t)
		}
	})
	if len(crumbs) >= 2 {
		// The deepest two crumbs are brand then model.
		return crumbs[len(crumbs)-2], crumbs[len(crumbs)-1]
	}

	parts := strings.Fields(p.mainTitle)
	if len(parts) > 0 {
		brand = parts[0]
	}
	if len(parts) > 1 {
		model = strings.Join(parts[1:], " ")
	}
	return brand, model
}

// generation searches the title and the attribute map for generation markers
// (digits, roman numerals, or generation wording) and separately flags
// restyling terminology.
func generation(p *page) (string, bool) {
	restyling := restyled.MatchString(p.rawTitle)
	gen := ""

	if m := genParen.FindStringSubmatch(p.rawTitle); m != nil {
		gen = strings.TrimSpace(m[1])
	} else if m := genRoman.FindStringSubmatch(p.rawTitle); m != nil {
		gen = m[1]
	} else if m := genDigit.FindStringSubmatch(p.rawTitle); m != nil {
		gen = m[1]
	}

	for _, k := range p.kv.Keys() {
		v, _ := p.kv.Get(k)
		if strings.Contains(k, "поколен") || strings.Contains(k, "generation") {
			if gen == "" {
				gen = strings.TrimSpace(v)
			}
			if restyled.MatchString(v) {
				restyling = true
			}
		}
		if strings.Contains(k, "рестайл") {
			restyling = true
		}
	}

	if gen == "" {
		return types.UnknownSentinel, restyling
	}
	return gen, restyling
}
