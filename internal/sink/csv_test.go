package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dromcrawl/pkg/types"
)

func sampleRecords() []types.Record {
	a := types.NewRecord("https://auto.drom.ru/cars/toyota/1.html")
	a.Brand = "Toyota"
	a.Model = "Corolla"
	a.Year = types.IntValue(2018)
	a.Price = types.IntValue(1250000)
	a.EngineVolume = types.FloatValue(1.6)

	b := types.NewRecord("https://auto.drom.ru/cars/kia/2.html")
	b.Brand = "Kia"
	return []types.Record{a, b}
}

func TestCSVWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s := NewCSVSink(path, nil)

	if err := s.Write(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.HasPrefix(raw, utf8BOM) {
		t.Fatal("artifact is missing the UTF-8 BOM")
	}

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse artifact: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("artifact has %d rows, want header plus 2 records", len(rows))
	}
	if !reflect.DeepEqual(rows[0], types.Columns) {
		t.Errorf("header = %v", rows[0])
	}

	first := rows[1]
	if first[0] != "https://auto.drom.ru/cars/toyota/1.html" || first[1] != "Toyota" {
		t.Errorf("first row = %v", first)
	}
	if first[7] != "1.60" {
		t.Errorf("engine_volume cell = %q, want 1.60", first[7])
	}

	second := rows[2]
	if second[3] != types.UnknownSentinel {
		t.Errorf("unknown year cell = %q, want sentinel", second[3])
	}
}

func TestCSVWriteEmptyIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s := NewCSVSink(path, nil)

	if err := s.Write(context.Background(), nil); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty write must not create the artifact, stat err = %v", err)
	}
}

type failingSink struct{}

func (failingSink) Write(context.Context, []types.Record) error { return os.ErrPermission }
func (failingSink) Close() error                                { return nil }

func TestPipelineReachesEverySink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	p := NewPipeline(failingSink{}, NewCSVSink(path, nil))

	err := p.Write(context.Background(), sampleRecords())
	if err == nil {
		t.Fatal("expected the failing sink's error to surface")
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("later sink skipped after earlier failure: %v", statErr)
	}
}
