package types

import "testing"

func TestNewRecordAllFieldsUnknown(t *testing.T) {
	rec := NewRecord("https://example.com/cars/1.html")
	row := rec.Row()
	if len(row) != len(Columns) {
		t.Fatalf("Row() has %d cells, want %d", len(row), len(Columns))
	}
	if row[0] != "https://example.com/cars/1.html" {
		t.Errorf("url cell = %q", row[0])
	}
	for i, cell := range row[1:] {
		col := Columns[i+1]
		if col == "restyling" {
			if cell != "false" {
				t.Errorf("restyling cell = %q, want false", cell)
			}
			continue
		}
		if cell != UnknownSentinel {
			t.Errorf("column %s = %q, want %q", col, cell, UnknownSentinel)
		}
	}
}

func TestRowRendersKnownValues(t *testing.T) {
	rec := NewRecord("u")
	rec.Year = IntValue(2018)
	rec.Price = IntValue(1250000)
	rec.EngineVolume = FloatValue(1.6)
	rec.Restyling = true

	row := rec.Row()
	got := map[string]string{}
	for i, col := range Columns {
		got[col] = row[i]
	}
	if got["year"] != "2018" {
		t.Errorf("year = %q", got["year"])
	}
	if got["price"] != "1250000" {
		t.Errorf("price = %q", got["price"])
	}
	if got["engine_volume"] != "1.60" {
		t.Errorf("engine_volume = %q", got["engine_volume"])
	}
	if got["restyling"] != "true" {
		t.Errorf("restyling = %q", got["restyling"])
	}
}

func TestOptionalZeroValueIsUnknown(t *testing.T) {
	var i OptionalInt
	var f OptionalFloat
	if i.String() != UnknownSentinel || f.String() != UnknownSentinel {
		t.Fatalf("zero optionals render %q and %q, want %q", i, f, UnknownSentinel)
	}
}
