package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/model"
	"github.com/ledgerline/ledgerline/internal/parse"
)

// vendorHeaders are the column names accepted for the vendor field, in
// order of preference.
var vendorHeaders = []string{"description", "vendor", "merchant", "narration"}

// csvColumns maps a header row to field positions. A value of -1 means the
// column is absent.
type csvColumns struct {
	amount   int
	date     int
	currency int
	vendor   int
}

func sniffColumns(header []string) (csvColumns, error) {
	cols := csvColumns{amount: -1, date: -1, currency: -1, vendor: -1}
	vendorRank := len(vendorHeaders)
	for i, name := range header {
		switch normalized := strings.ToLower(strings.TrimSpace(name)); normalized {
		case "amount":
			cols.amount = i
		case "date":
			cols.date = i
		case "currency":
			cols.currency = i
		default:
			for rank, candidate := range vendorHeaders {
				if normalized == candidate && rank < vendorRank {
					cols.vendor = i
					vendorRank = rank
				}
			}
		}
	}
	if cols.amount == -1 {
		return cols, fmt.Errorf("no amount column in header %v", header)
	}
	return cols, nil
}

// ImportCSV reads a bank-export style CSV and converts each row into a
// transaction. The first row must be a header naming at least an amount
// column; date, currency, and description/vendor/merchant/narration columns
// are picked up when present. Rows whose amount or date cannot be parsed
// are skipped with a warning rather than failing the whole import.
func (p *Pipeline) ImportCSV(ctx context.Context, r io.Reader) ([]*model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols, err := sniffColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []*model.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("skipping malformed CSV row", "line", line, "error", err)
			continue
		}

		txn, err := p.csvRow(ctx, cols, record)
		if err != nil {
			slog.Warn("skipping CSV row", "line", line, "error", err)
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (p *Pipeline) csvRow(ctx context.Context, cols csvColumns, record []string) (*model.Transaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rawAmount := field(cols.amount)
	amount, ok := parse.NormalizeAmount(strings.TrimLeft(rawAmount, "-+"))
	if !ok {
		return nil, fmt.Errorf("unparseable amount %q", rawAmount)
	}

	date := p.now().UTC()
	if rawDate := field(cols.date); rawDate != "" {
		parsed := csvDate(rawDate)
		if parsed == nil {
			return nil, fmt.Errorf("unparseable date %q", rawDate)
		}
		date = *parsed
	}

	vendor := field(cols.vendor)
	category, err := p.categorize(ctx, vendor, strings.Join(record, " "))
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(field(cols.currency))
	if currency == "" {
		currency = "USD"
	}

	return &model.Transaction{
		ID:         uuid.NewString(),
		Source:     model.SourceManual,
		Amount:     amount,
		Currency:   currency,
		Vendor:     vendor,
		Category:   category,
		Date:       date,
		Confidence: 1.0,
		RawText:    strings.Join(record, ","),
	}, nil
}

// csvDate accepts the date formats the heuristic parser knows plus the
// bare layouts bank exports commonly use.
func csvDate(raw string) *time.Time {
	if t, ok := parse.ParseDate(raw); ok {
		utc := t.UTC()
		return &utc
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
