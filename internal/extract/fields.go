package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// kwToHP converts kilowatts to metric horsepower.
const kwToHP = 1.35962

var (
	digitRun     = regexp.MustCompile("\\d[\\d\\s ]*")
	nonDigits    = regexp.MustCompile(`\D`)
	priceRefusal = regexp.MustCompile(`(?i)договорн|по запросу|обсужд`)

	powerHP = regexp.MustCompile(`(?i)(\d{2,4})\s*(?:л\.?\s?с\.?|лс|hp)`)
	powerKW = regexp.MustCompile(`(?i)(\d{2,4})\s*(?:квт|kw)`)

	fuelScan    = regexp.MustCompile(`(?i)(бензин|дизель|электр|гибрид)[^,;\n]{0,30}`)
	volumeLitre = regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(?:л|l)(?:[^\p{L}]|$)`)
	volumeCC    = regexp.MustCompile(`(?i)(\d{3,4})\s*см`)

	mileageKM   = regexp.MustCompile("(\\d[\\d\\s ]*)\\s*км")
	driveScan   = regexp.MustCompile(`(?i)(?:^|[^\p{L}\d])(передний|задний|полный|4x4|4wd|awd)(?:[^\p{L}\d]|$)`)
	bodyScan    = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(седан|хэтчбек|хетчбек|универсал|внедорожник|джип|купе|минивэн|фургон|лифтбек|пикап)(?:[^\p{L}]|$)`)
	steeringRow = regexp.MustCompile(`(?i)(правый|левый)[^\n]{0,60}?руль`)
)

// digitsInt strips every non-digit rune and parses the remainder.
func digitsInt(s string) (int, bool) {
	d := nonDigits.ReplaceAllString(s, "")
	if d == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// yearLike reports whether n falls in the plausible model-year range.
func yearLike(n int) bool {
	return n >= 1900 && n <= 2099
}

// parsePrice extracts a price from free text. Numeric runs are collected,
// year-like tokens (1900-2099) are dropped, and the largest remainder wins;
// "price on request" phrasing and all-year-like candidate sets yield nothing.
func parsePrice(text string) (int, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(text), " ", " ")
	if t == "" || priceRefusal.MatchString(t) {
		return 0, false
	}
	best := 0
	found := false
	for _, run := range digitRun.FindAllString(t, -1) {
		n, ok := digitsInt(run)
		if !ok || yearLike(n) {
			continue
		}
		if !found || n > best {
			best = n
			found = true
		}
	}
	return best, found
}

// parsePower extracts horsepower from free text, converting kilowatt figures.
func parsePower(text string) (int, bool) {
	if m := powerHP.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if m := powerKW.FindStringSubmatch(text); m != nil {
		if kw, err := strconv.Atoi(m[1]); err == nil {
			return int(math.Round(float64(kw) * kwToHP)), true
		}
	}
	return 0, false
}

// parseEngine splits an engine descriptor into a fuel-type label and a
// displacement in litres. Either half may be missing.
func parseEngine(text string) (fuel string, volume float64, volumeOK bool) {
	s := strings.ToLower(text)
	switch {
	case strings.Contains(s, "бензин") || strings.Contains(s, "petrol"):
		fuel = "бензин"
	case strings.Contains(s, "дизел") || strings.Contains(s, "diesel"):
		fuel = "дизель"
	case strings.Contains(s, "электр") || strings.Contains(s, "electric"):
		fuel = "электро"
	case strings.Contains(s, "гибрид") || strings.Contains(s, "hybrid"):
		fuel = "гибрид"
	case strings.Contains(s, "газ") || strings.Contains(s, "lpg"):
		fuel = "газ"
	default:
		// Fall back to the descriptor's first word, raw.
		if fields := strings.Fields(s); len(fields) > 0 {
			fuel = strings.Trim(fields[0], ".,;:")
		}
	}

	if m := volumeLitre.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			return fuel, v, true
		}
	}
	if m := volumeCC.FindStringSubmatch(s); m != nil {
		if cc, err := strconv.Atoi(m[1]); err == nil {
			return fuel, math.Round(float64(cc)/10.0) / 100.0, true
		}
	}
	return fuel, 0, false
}

// Canonical vocabulary tables: the first substring match maps the raw value
// to its canonical label; unrecognized values pass through unchanged.
var (
	transmissionVocab = []vocabEntry{
		{"механ", "механика"}, {"мкпп", "механика"},
		{"автомат", "автомат"}, {"акпп", "автомат"},
		{"вариатор", "вариатор"}, {"робот", "робот"},
	}
	driveVocab = []vocabEntry{
		{"перед", "передний"}, {"зад", "задний"}, {"полн", "полный"},
		{"4x4", "полный"}, {"4wd", "полный"}, {"awd", "полный"},
	}
	bodyVocab = []vocabEntry{
		{"седан", "седан"}, {"хэтчбек", "хэтчбек"}, {"хетчбек", "хэтчбек"},
		{"универсал", "универсал"}, {"внедорожник", "внедорожник"},
		{"джип", "внедорожник"}, {"купе", "купе"}, {"минивэн", "минивэн"},
		{"фургон", "фургон"}, {"лифтбек", "лифтбек"}, {"пикап", "пикап"},
	}
)

type vocabEntry struct {
	substr    string
	canonical string
}

func normalizeVocab(raw string, vocab []vocabEntry) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, e := range vocab {
		if strings.Contains(s, e.substr) {
			return e.canonical
		}
	}
	return strings.TrimSpace(raw)
}

func normalizeSteering(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "прав"):
		return "правый"
	case strings.Contains(s, "лев"):
		return "левый"
	}
	return strings.TrimSpace(raw)
}

// capRunes truncates s to at most n runes without splitting a character.
func capRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
