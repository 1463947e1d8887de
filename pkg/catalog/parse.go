package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
)

// Option configures parsing.
type Option func(*parser)

type parser struct {
	logger *slog.Logger
}

// WithLogger reports skipped rows at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) {
		p.logger = logger
	}
}

func newParser(opts []Option) *parser {
	p := &parser{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDefinitions reads a task definition table.
// Rows missing the id or the description are skipped.
func ParseDefinitions(r io.Reader, opts ...Option) ([]domain.Trial, error) {
	p := newParser(opts)
	trials := []domain.Trial{}

	err := p.eachRow(r, "definitions", func(line int, fields []string) bool {
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return false
		}
		trials = append(trials, domain.Trial{ID: fields[0], Description: fields[1]})
		return true
	})
	if err != nil {
		return nil, err
	}
	return trials, nil
}

// ParseOrder reads a task order table.
// Rows whose order is not an integer, or whose task id is empty, are skipped.
func ParseOrder(r io.Reader, opts ...Option) ([]domain.SequenceEntry, error) {
	p := newParser(opts)
	entries := []domain.SequenceEntry{}

	err := p.eachRow(r, "order", func(line int, fields []string) bool {
		if len(fields) < 2 || fields[1] == "" {
			return false
		}
		order, err := strconv.Atoi(fields[0])
		if err != nil {
			return false
		}
		entries = append(entries, domain.SequenceEntry{Order: order, TaskID: fields[1]})
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// eachRow feeds every data row (header excluded) to fn with trimmed fields.
// fn returns false when the row was rejected.
func (p *parser) eachRow(r io.Reader, table string, fn func(line int, fields []string) bool) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			if header {
				header = false
				continue
			}
			p.logger.Debug("skipping malformed row", "table", table, "line", parseErr.Line, "err", parseErr.Err)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s table: %w", table, err)
		}

		if header {
			header = false
			continue
		}

		line, _ := cr.FieldPos(0)
		fields := make([]string, len(record))
		for i, f := range record {
			fields[i] = strings.TrimSpace(f)
		}

		if !fn(line, fields) {
			p.logger.Debug("skipping row", "table", table, "line", line, "fields", fields)
		}
	}
}
