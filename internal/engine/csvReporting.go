package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"tickbacktester/types"
	"time"
)

// WriteOrdersCSVFile writes the order history to a CSV file at path.
func WriteOrdersCSVFile(path string, orders []types.Order) error {
	return writeCSVFile(path, func(w io.Writer) error { return WriteOrdersCSV(w, orders) })
}

// WriteEquityCSVFile writes the equity curve to a CSV file at path.
func WriteEquityCSVFile(path string, curve []types.EquityPoint) error {
	return writeCSVFile(path, func(w io.Writer) error { return WriteEquityCSV(w, curve) })
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteOrdersCSV writes orders to any io.Writer as CSV.
func WriteOrdersCSV(w io.Writer, orders []types.Order) error {
	cw := csv.NewWriter(w)

	header := []string{
		"order_id",
		"created_at", // RFC3339
		"strategy",
		"symbol",
		"side",
		"quantity",
		"price",
		"status",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, o := range orders {
		record := []string{
			o.ID,
			o.CreatedAt.Format(time.RFC3339Nano),
			o.Strategy,
			o.Symbol,
			string(o.Side),
			strconv.Itoa(o.Quantity),
			strconv.FormatFloat(o.Price, 'f', -1, 64),
			string(o.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteEquityCSV writes one timestamp,equity row per equity point.
func WriteEquityCSV(w io.Writer, curve []types.EquityPoint) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"timestamp", "equity"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range curve {
		record := []string{
			p.Timestamp.Format(time.RFC3339Nano),
			strconv.FormatFloat(p.Equity, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
