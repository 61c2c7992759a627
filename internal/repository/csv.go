package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"tickbacktester/types"
	"time"
)

var requiredColumns = []string{"timestamp", "symbol", "price"}

// Accepted timestamp layouts, tried in order. Values without a zone are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// LoadCSV reads ticks from the CSV file at path.
func LoadCSV(path string) ([]types.MarketTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ticks, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ticks, nil
}

// ReadCSV parses a header row naming timestamp, symbol and price (in any
// order, other columns ignored) followed by one tick per row. The result
// is sorted by timestamp, keeping file order for equal timestamps.
func ReadCSV(r io.Reader) ([]types.MarketTick, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingColumns
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	var ticks []types.MarketTick
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		tick, err := parseRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ticks = append(ticks, tick)
	}

	sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].Timestamp.Before(ticks[j].Timestamp) })
	return ticks, nil
}

func columnIndexes(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, ErrMissingColumns
		}
	}
	return idx, nil
}

func parseRecord(record []string, idx map[string]int) (types.MarketTick, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(record) {
			return "", fmt.Errorf("%w: missing %s", ErrMalformedRow, col)
		}
		return strings.TrimSpace(record[i]), nil
	}

	rawTs, err := field("timestamp")
	if err != nil {
		return types.MarketTick{}, err
	}
	ts, err := parseTimestamp(rawTs)
	if err != nil {
		return types.MarketTick{}, err
	}
	symbol, err := field("symbol")
	if err != nil {
		return types.MarketTick{}, err
	}
	rawPrice, err := field("price")
	if err != nil {
		return types.MarketTick{}, err
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return types.MarketTick{}, fmt.Errorf("%w: price %q", ErrMalformedRow, rawPrice)
	}

	return types.MarketTick{Timestamp: ts, Symbol: symbol, Price: price}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRow, s)
}
