package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dromcrawl/pkg/types"
)

// SQLiteSink mirrors records into a local database so successive runs can
// build a dataset incrementally. Rows are keyed by URL; a re-crawled listing
// replaces its previous row.
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSink opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteSink(path string, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	s := &SQLiteSink{db: db, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) ensureSchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS listings (
	    url TEXT PRIMARY KEY,
	    brand TEXT,
	    model TEXT,
	    year INTEGER,
	    generation TEXT,
	    restyling INTEGER NOT NULL DEFAULT 0,
	    price INTEGER,
	    engine_volume REAL,
	    fuel_type TEXT,
	    power_hp INTEGER,
	    transmission TEXT,
	    drive TEXT,
	    body_type TEXT,
	    mileage INTEGER,
	    owners INTEGER,
	    steering TEXT,
	    equipment TEXT,
	    scraped_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Write upserts every record. A zero-length record list is a reported no-op.
func (s *SQLiteSink) Write(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		s.logger.Info("no records to save, skipping database")
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO listings (
	    url, brand, model, year, generation, restyling,
	    price, engine_volume, fuel_type, power_hp,
	    transmission, drive, body_type, mileage, owners, steering, equipment,
	    scraped_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(url) DO UPDATE SET
	    brand = excluded.brand,
	    model = excluded.model,
	    year = excluded.year,
	    generation = excluded.generation,
	    restyling = excluded.restyling,
	    price = excluded.price,
	    engine_volume = excluded.engine_volume,
	    fuel_type = excluded.fuel_type,
	    power_hp = excluded.power_hp,
	    transmission = excluded.transmission,
	    drive = excluded.drive,
	    body_type = excluded.body_type,
	    mileage = excluded.mileage,
	    owners = excluded.owners,
	    steering = excluded.steering,
	    equipment = excluded.equipment,
	    scraped_at = excluded.scraped_at`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.URL,
			nullString(rec.Brand),
			nullString(rec.Model),
			nullInt(rec.Year),
			nullString(rec.Generation),
			rec.Restyling,
			nullInt(rec.Price),
			nullFloat(rec.EngineVolume),
			nullString(rec.FuelType),
			nullInt(rec.PowerHP),
			nullString(rec.Transmission),
			nullString(rec.Drive),
			nullString(rec.BodyType),
			nullInt(rec.Mileage),
			nullInt(rec.Owners),
			nullString(rec.Steering),
			nullString(rec.Equipment),
			now,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("saved records to database", "records", len(records))
	return nil
}

// Close closes the underlying DB connection.
func (s *SQLiteSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// The unknown sentinel maps to NULL so the database stays typed.
func nullString(v string) any {
	if v == types.UnknownSentinel || v == "" {
		return nil
	}
	return v
}

func nullInt(v types.OptionalInt) any {
	if !v.Known {
		return nil
	}
	return v.Value
}

func nullFloat(v types.OptionalFloat) any {
	if !v.Known {
		return nil
	}
	return v.Value
}
