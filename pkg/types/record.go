package types

import "strconv"

// UnknownSentinel is the literal emitted for any field that could not be
// determined from the page. Every Record field holds either a usable value or
// this sentinel; fields are never absent.
const UnknownSentinel = "N/A"

// Record is one parsed vehicle listing, keyed by its detail-page URL.
type Record struct {
	URL          string
	Brand        string
	Model        string
	Year         OptionalInt
	Generation   string
	Restyling    bool
	Price        OptionalInt
	EngineVolume OptionalFloat
	FuelType     string
	PowerHP      OptionalInt
	Transmission string
	Drive        string
	BodyType     string
	Mileage      OptionalInt
	Owners       OptionalInt
	Steering     string
	Equipment    string
}

// NewRecord returns a Record with every field initialised to its unknown
// state, so extraction only ever upgrades fields.
func NewRecord(url string) Record {
	return Record{
		URL:          url,
		Brand:        UnknownSentinel,
		Model:        UnknownSentinel,
		Generation:   UnknownSentinel,
		FuelType:     UnknownSentinel,
		Transmission: UnknownSentinel,
		Drive:        UnknownSentinel,
		BodyType:     UnknownSentinel,
		Steering:     UnknownSentinel,
		Equipment:    UnknownSentinel,
	}
}

// Columns is the fixed column order of the tabular artifact.
var Columns = []string{
	"url", "brand", "model", "year", "generation", "restyling",
	"price", "engine_volume", "fuel_type", "power_hp",
	"transmission", "drive", "body_type",
	"mileage", "owners", "steering", "equipment",
}

// Row renders the record in Columns order, substituting the unknown sentinel
// for undetermined fields.
func (r Record) Row() []string {
	return []string{
		r.URL,
		r.Brand,
		r.Model,
		r.Year.String(),
		r.Generation,
		strconv.FormatBool(r.Restyling),
		r.Price.String(),
		r.EngineVolume.String(),
		r.FuelType,
		r.PowerHP.String(),
		r.Transmission,
		r.Drive,
		r.BodyType,
		r.Mileage.String(),
		r.Owners.String(),
		r.Steering,
		r.Equipment,
	}
}
