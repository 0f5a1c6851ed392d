package repository

import (
	"context"
	"database/sql"
	"fmt"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

const createReadingsTable = `
	CREATE TABLE IF NOT EXISTS energy_readings (
		id                  BIGSERIAL PRIMARY KEY,
		source              TEXT             NOT NULL,
		recorded_at         TIMESTAMPTZ      NOT NULL,
		voltage_v           DOUBLE PRECISION NOT NULL,
		frequency_hz        DOUBLE PRECISION NOT NULL,
		current_a           DOUBLE PRECISION NOT NULL,
		active_power_kw     DOUBLE PRECISION NOT NULL,
		power_factor        DOUBLE PRECISION NOT NULL,
		apparent_power_kva  DOUBLE PRECISION NOT NULL,
		reactive_power_kvar DOUBLE PRECISION NOT NULL,
		energy_kwh          DOUBLE PRECISION NOT NULL,
		cost_cumulative     DOUBLE PRECISION NOT NULL,
		pf_class            TEXT             NOT NULL,
		compressor_on       BOOLEAN          NOT NULL,
		duty_cycle_pct_24h  DOUBLE PRECISION NOT NULL,
		cycle_id            BIGINT           NOT NULL,
		row_index           INTEGER          NOT NULL,
		created_at          TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		UNIQUE (source, recorded_at, cycle_id, row_index)
	)
`

// ReadingArchive copies loaded readings into PostgreSQL.
type ReadingArchive struct {
	db *sql.DB
}

// NewReadingArchive returns repository.
func NewReadingArchive(db *sql.DB) *ReadingArchive {
	return &ReadingArchive{db: db}
}

// EnsureSchema creates the readings table when missing.
func (r *ReadingArchive) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReadingsTable); err != nil {
		return fmt.Errorf("archive: create table: %w", err)
	}
	return nil
}

// Store inserts readings in one transaction and returns how many rows were new.
// A row is identified by source, timestamp, cycle and its position in the sequence,
// so samples sharing a timestamp are all kept while re-archiving a source is a no-op.
func (r *ReadingArchive) Store(ctx context.Context, source string, readings []models.EnergyReading) (int64, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO energy_readings (
			source, recorded_at, voltage_v, frequency_hz, current_a, active_power_kw,
			power_factor, apparent_power_kva, reactive_power_kvar, energy_kwh,
			cost_cumulative, pf_class, compressor_on, duty_cycle_pct_24h, cycle_id, row_index
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (source, recorded_at, cycle_id, row_index) DO NOTHING
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("archive: prepare: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, reading := range readings {
		res, err := stmt.ExecContext(ctx,
			source,
			reading.Time.UTC(),
			reading.VoltageV,
			reading.FrequencyHz,
			reading.CurrentA,
			reading.ActivePowerKW,
			reading.PowerFactor,
			reading.ApparentPowerKVA,
			reading.ReactivePowerKVAr,
			reading.EnergyKWh,
			reading.CostCumulative,
			string(reading.PFClass),
			reading.CompressorOn,
			reading.DutyCyclePct24H,
			reading.CycleID,
			i,
		)
		if err != nil {
			return 0, fmt.Errorf("archive: insert reading at %s: %w", reading.Time.Format("2006-01-02T15:04:05Z07:00"), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("archive: commit: %w", err)
	}
	return inserted, nil
}

// Count returns the number of archived readings for source.
func (r *ReadingArchive) Count(ctx context.Context, source string) (int64, error) {
	const query = `SELECT COUNT(*) FROM energy_readings WHERE source = $1`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, source).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
