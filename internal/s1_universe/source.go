package s1_universe

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source produces the raw ticker list of a universe
type Source interface {
	Name() string
	Tickers(ctx context.Context) ([]string, error)
}

// CSVSource reads tickers from a CSV file
type CSVSource struct {
	Path string
}

// Name identifies the source in logs and cache keys
func (s CSVSource) Name() string {
	return "csv:" + s.Path
}

// Tickers loads the file at Path
func (s CSVSource) Tickers(_ context.Context) ([]string, error) {
	return LoadCSV(s.Path)
}

// LoadCSV reads a CSV file with a header row. Tickers are taken from the
// "Ticker" column (case-insensitive), or from the first column when no such
// header exists. Values are returned as-is; normalisation is the builder's job.
func LoadCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	tickers, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read universe file %s: %w", path, err)
	}
	return tickers, nil
}

// ReadCSV parses universe CSV content from r
func ReadCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, err
	}

	col := 0
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), "ticker") {
			col = i
			break
		}
	}

	var tickers []string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if col < len(record) {
			tickers = append(tickers, record[col])
		}
	}
	return tickers, nil
}

// StaticSource serves a fixed ticker list (API requests, tests)
type StaticSource struct {
	Label   string
	Symbols []string
}

// Name identifies the source
func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Tickers returns a copy of the list
func (s StaticSource) Tickers(_ context.Context) ([]string, error) {
	return append([]string(nil), s.Symbols...), nil
}
