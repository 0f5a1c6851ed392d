package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

const defaultTimeout = 10 * time.Second

// Options tunes a Loader.
type Options struct {
	// Location interprets timestamps that carry no zone. Defaults to UTC.
	Location *time.Location
	// Timeout bounds the whole fetch and parse. Defaults to 10s.
	Timeout time.Duration
}

// Loader turns a CSV resource into a timestamp-ordered reading sequence.
type Loader struct {
	opener   Opener
	location *time.Location
	timeout  time.Duration
	logger   *zap.Logger
}

// New returns a loader reading through opener.
func New(opener Opener, opts Options, logger *zap.Logger) *Loader {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		opener:   opener,
		location: opts.Location,
		timeout:  opts.Timeout,
		logger:   logger,
	}
}

// Load performs the single fetch of source and returns all readings or a *LoadError.
// No partial sequence is ever returned.
func (l *Loader) Load(ctx context.Context, source string) ([]models.EnergyReading, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	started := time.Now()
	body, err := l.opener.Open(ctx, source)
	if err != nil {
		return nil, &LoadError{Kind: ErrUnreachable, Source: source, Err: err}
	}
	defer body.Close()

	readings, err := l.Decode(body, source)
	if err != nil {
		return nil, err
	}

	l.logger.Info("readings loaded",
		zap.String("source", source),
		zap.Int("readings", len(readings)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return readings, nil
}

type parsedRow struct {
	reading models.EnergyReading
	line    int
}

// Decode parses CSV text from r. source only labels errors.
func (l *Loader) Decode(r io.Reader, source string) ([]models.EnergyReading, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	csvr.ReuseRecord = true

	header, err := csvr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Kind: ErrMalformedHeader, Source: source, Err: errors.New("empty input")}
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &LoadError{Kind: ErrMalformedHeader, Source: source, Row: parseErr.Line, Err: parseErr.Err}
		}
		return nil, readError(source, err)
	}
	positions, err := resolveHeader(header)
	if err != nil {
		return nil, &LoadError{Kind: ErrMalformedHeader, Source: source, Row: 1, Err: err}
	}

	var rows []parsedRow
	for {
		record, err := csvr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, readError(source, err)
		}
		if blank(record) {
			continue
		}

		line, _ := csvr.FieldPos(0)
		reading, err := l.parseRecord(record, positions, source, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsedRow{reading: reading, line: line})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].reading.Time.Before(rows[j].reading.Time)
	})

	if err := checkCumulative(rows, source); err != nil {
		return nil, err
	}

	readings := make([]models.EnergyReading, len(rows))
	for i := range rows {
		readings[i] = rows[i].reading
	}
	return readings, nil
}

func (l *Loader) parseRecord(record []string, positions []int, source string, line int) (models.EnergyReading, error) {
	var reading models.EnergyReading
	for i, col := range schema {
		pos := positions[i]
		kind := ErrBadValue
		if col.name == ColumnTime {
			kind = ErrBadTimestamp
		}
		if pos >= len(record) {
			return reading, &LoadError{Kind: kind, Source: source, Row: line, Column: col.name, Err: errors.New("missing value")}
		}
		raw := strings.TrimSpace(record[pos])
		if raw == "" {
			return reading, &LoadError{Kind: kind, Source: source, Row: line, Column: col.name, Err: errors.New("empty value")}
		}
		if err := col.parse(&reading, raw, l.location); err != nil {
			return reading, &LoadError{Kind: kind, Source: source, Row: line, Column: col.name, Err: err}
		}
	}

	if err := checkRanges(reading); err != nil {
		err.Source = source
		err.Row = line
		return reading, err
	}
	return reading, nil
}

// resolveHeader returns, for each schema column, its index in the header.
func resolveHeader(header []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}

	positions := make([]int, len(schema))
	var missing []string
	for i, col := range schema {
		pos, ok := index[col.name]
		if !ok {
			missing = append(missing, col.name)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s (expected %s)", strings.Join(missing, ", "), strings.Join(Columns(), ","))
	}
	return positions, nil
}

func checkRanges(r models.EnergyReading) *LoadError {
	switch {
	case r.PowerFactor < 0 || r.PowerFactor > 1:
		return &LoadError{Kind: ErrInvariant, Column: ColumnPowerFactor, Err: fmt.Errorf("%v outside [0,1]", r.PowerFactor)}
	case r.DutyCyclePct24H < 0 || r.DutyCyclePct24H > 100:
		return &LoadError{Kind: ErrInvariant, Column: ColumnDutyCycle, Err: fmt.Errorf("%v outside [0,100]", r.DutyCyclePct24H)}
	}
	return nil
}

// checkCumulative requires energy and cost to never decrease in timestamp order.
func checkCumulative(rows []parsedRow, source string) error {
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].reading, rows[i].reading
		if cur.EnergyKWh < prev.EnergyKWh {
			return &LoadError{Kind: ErrInvariant, Source: source, Row: rows[i].line, Column: ColumnEnergy,
				Err: fmt.Errorf("cumulative energy decreased from %v to %v", prev.EnergyKWh, cur.EnergyKWh)}
		}
		if cur.CostCumulative < prev.CostCumulative {
			return &LoadError{Kind: ErrInvariant, Source: source, Row: rows[i].line, Column: ColumnCost,
				Err: fmt.Errorf("cumulative cost decreased from %v to %v", prev.CostCumulative, cur.CostCumulative)}
		}
	}
	return nil
}

func readError(source string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &LoadError{Kind: ErrBadValue, Source: source, Row: parseErr.Line, Err: parseErr.Err}
	}
	return &LoadError{Kind: ErrUnreachable, Source: source, Err: err}
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
