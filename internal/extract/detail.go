// Package extract converts fetched detail pages into typed records. Every
// field extractor is independent and ordered by decreasing reliability, so
// one field's failure can never corrupt another's.
package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dromcrawl/pkg/types"
)

// equipmentCap bounds the free-text equipment field, in runes.
const equipmentCap = 2000

// page bundles everything the per-field strategies may consult: the parsed
// tree, the attribute map, the raw markup text, and the title variants.
type page struct {
	doc        *goquery.Document
	kv         *KeyValueMap
	rawText    string
	rawTitle   string
	mainTitle  string
	engineText string
}

// strategy is one named attempt at a field. Strategies run in declared order
// until one reports success, which keeps "first string found wins" behaviour
// deterministic.
type strategy[T any] struct {
	name string
	fn   func(p *page) (T, bool)
}

func runStrategies[T any](logger *slog.Logger, p *page, url, field string, strategies []strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s.fn(p); ok {
			logger.Debug("field extracted", "url", url, "field", field, "strategy", s.name)
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Extractor assembles Records from detail pages.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor constructs a detail-page extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract converts one detail page into a Record. It never fails: any field
// whose sources are absent or unparseable resolves to the unknown sentinel,
// leaving the rest of the Record intact.
func (e *Extractor) Extract(pageURL, pageText string) types.Record {
	rec := types.NewRecord(pageURL)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		e.logger.Debug("detail parse failed, emitting empty record", "url", pageURL, "error", err)
		return rec
	}

	p := &page{
		doc:     doc,
		kv:      KeyValues(doc),
		rawText: pageText,
	}
	p.rawTitle = pageTitle(doc)

	var year types.OptionalInt
	p.mainTitle, year = cleanTitle(p.rawTitle)
	rec.Year = year

	rec.Brand, rec.Model = brandModel(p)
	rec.Generation, rec.Restyling = generation(p)

	if v, ok := runStrategies(e.logger, p, pageURL, "price", priceStrategies); ok {
		rec.Price = types.IntValue(v)
	}

	p.engineText = engineDescriptor(p)
	if p.engineText != "" {
		fuel, vol, volOK := parseEngine(p.engineText)
		if fuel != "" {
			rec.FuelType = fuel
		}
		if volOK {
			rec.EngineVolume = types.FloatValue(vol)
		}
	}

	if v, ok := runStrategies(e.logger, p, pageURL, "power_hp", powerStrategies); ok {
		rec.PowerHP = types.IntValue(v)
	}
	if v, ok := p.kv.Find("короб", "трансмисси"); ok {
		rec.Transmission = normalizeVocab(v, transmissionVocab)
	}
	if v, ok := runStrategies(e.logger, p, pageURL, "drive", driveStrategies); ok {
		rec.Drive = v
	}
	if v, ok := runStrategies(e.logger, p, pageURL, "body_type", bodyStrategies); ok {
		rec.BodyType = v
	}
	if v, ok := runStrategies(e.logger, p, pageURL, "mileage", mileageStrategies); ok {
		rec.Mileage = types.IntValue(v)
	}
	if v, ok := p.kv.Find("владельц"); ok {
		if n, parsed := digitsInt(v); parsed {
			rec.Owners = types.IntValue(n)
		}
	}
	if v, ok := runStrategies(e.logger, p, pageURL, "steering", steeringStrategies); ok {
		rec.Steering = v
	}
	if v, ok := runStrategies(e.logger, p, pageURL, "equipment", equipmentStrategies); ok {
		rec.Equipment = capRunes(v, equipmentCap)
	}

	return rec
}

var priceStrategies = []strategy[int]{
	{"price_element", func(p *page) (int, bool) {
		sel := p.doc.Find(`[data-ftid="bull_price"]`).First()
		if sel.Length() == 0 {
			sel = p.doc.Find(".Price__value, .card__price, .css-1cn8i4y").First()
		}
		if sel.Length() == 0 {
			return 0, false
		}
		return parsePrice(nodeText(sel))
	}},
	{"meta_og_description", func(p *page) (int, bool) {
		content, ok := p.doc.Find(`meta[property="og:description"]`).Attr("content")
		if !ok {
			return 0, false
		}
		return parsePrice(content)
	}},
}

var powerStrategies = []strategy[int]{
	{"kv_power", func(p *page) (int, bool) {
		v, ok := p.kv.Find("мощност", "л.с", "квт")
		if !ok {
			return 0, false
		}
		return parsePower(v)
	}},
	{"engine_descriptor", func(p *page) (int, bool) {
		if p.engineText == "" {
			return 0, false
		}
		return parsePower(p.engineText)
	}},
	{"page_scan", func(p *page) (int, bool) {
		return parsePower(p.rawText)
	}},
}

var driveStrategies = []strategy[string]{
	{"kv_drive", func(p *page) (string, bool) {
		v, ok := p.kv.Find("привод")
		if !ok {
			return "", false
		}
		return normalizeVocab(v, driveVocab), true
	}},
	{"page_scan", func(p *page) (string, bool) {
		m := driveScan.FindStringSubmatch(p.rawText)
		if m == nil {
			return "", false
		}
		return normalizeVocab(strings.ToLower(m[1]), driveVocab), true
	}},
}

var bodyStrategies = []strategy[string]{
	{"kv_body", func(p *page) (string, bool) {
		v, ok := p.kv.Find("кузов")
		if !ok {
			return "", false
		}
		return normalizeVocab(v, bodyVocab), true
	}},
	{"page_scan", func(p *page) (string, bool) {
		m := bodyScan.FindStringSubmatch(p.rawText)
		if m == nil {
			return "", false
		}
		return normalizeVocab(strings.ToLower(m[1]), bodyVocab), true
	}},
}

var mileageStrategies = []strategy[int]{
	{"kv_mileage", func(p *page) (int, bool) {
		v, ok := p.kv.Find("пробег")
		if !ok {
			return 0, false
		}
		return digitsInt(v)
	}},
	{"page_scan_km", func(p *page) (int, bool) {
		m := mileageKM.FindStringSubmatch(p.rawText)
		if m == nil {
			return 0, false
		}
		return digitsInt(m[1])
	}},
}

var steeringStrategies = []strategy[string]{
	{"kv_steering", func(p *page) (string, bool) {
		v, ok := p.kv.Find("руль", "расположен")
		if !ok {
			return "", false
		}
		return normalizeSteering(v), true
	}},
	{"page_scan", func(p *page) (string, bool) {
		m := steeringRow.FindStringSubmatch(p.rawText)
		if m == nil {
			return "", false
		}
		return normalizeSteering(m[1]), true
	}},
}

var equipmentStrategies = []strategy[string]{
	{"section", equipmentFromSection},
	{"text_scan", equipmentFromText},
	{"kv_equipment", func(p *page) (string, bool) {
		return p.kv.Find("комплектац", "модифик")
	}},
	{"title_spec", equipmentFromTitle},
}

// engineDescriptor locates the engine text used for fuel, volume, and power:
// an engine/volume attribute first, then a fuel-keyword scan of the page.
func engineDescriptor(p *page) string {
	if v, ok := p.kv.Find("двигател", "объем", "engine"); ok {
		return v
	}
	if m := fuelScan.FindString(p.rawText); m != "" {
		return m
	}
	return ""
}
