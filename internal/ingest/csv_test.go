package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/model"
)

func TestImportCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Amount,Currency",
		"2024-01-10,Whole Foods Market,45.67,USD",
		"01/15/2024,Uber Trip,12.30,",
		"2024-01-20,Rent January,1850.00,EUR",
	}, "\n")

	p := NewPipeline(nil, &staticRules{rules: []model.Rule{
		{ID: "r1", Pattern: "uber", Category: "Transport", Enabled: true},
	}})

	txns, err := p.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	tx1 := txns[0]
	assert.Equal(t, model.SourceManual, tx1.Source)
	assert.Equal(t, 45.67, tx1.Amount)
	assert.Equal(t, "USD", tx1.Currency)
	assert.Equal(t, "Whole Foods Market", tx1.Vendor)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), tx1.Date)
	assert.Equal(t, 1.0, tx1.Confidence)

	tx2 := txns[1]
	assert.Equal(t, "Uber Trip", tx2.Vendor)
	assert.Equal(t, "Transport", tx2.Category)
	assert.Equal(t, "USD", tx2.Currency, "missing currency defaults")
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), tx2.Date)

	assert.Equal(t, 1850.00, txns[2].Amount)
	assert.Equal(t, "EUR", txns[2].Currency)
}

func TestImportCSVAlternateVendorColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "vendor", header: "amount,vendor"},
		{name: "merchant", header: "amount,merchant"},
		{name: "narration", header: "amount,narration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(nil, nil)
			p.now = fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

			txns, err := p.ImportCSV(context.Background(), strings.NewReader(tt.header+"\n10.00,Corner Store"))
			require.NoError(t, err)
			require.Len(t, txns, 1)
			assert.Equal(t, "Corner Store", txns[0].Vendor)
		})
	}
}

func TestImportCSVVendorColumnPreference(t *testing.T) {
	// When both a description and a vendor column exist, description wins
	// regardless of column order.
	csvData := strings.Join([]string{
		"amount,vendor,description",
		"10.00,VENDOR CODE 991,Corner Store",
	}, "\n")

	p := NewPipeline(nil, nil)
	p.now = fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	txns, err := p.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Corner Store", txns[0].Vendor)
}

func TestImportCSVSkipsBadRows(t *testing.T) {
	csvData := strings.Join([]string{
		"date,amount,description",
		"2024-01-10,45.67,Good Row",
		"not-a-date,10.00,Bad Date",
		"2024-01-12,not-a-number,Bad Amount",
		"2024-01-13,8.00,Another Good Row",
	}, "\n")

	p := NewPipeline(nil, nil)
	txns, err := p.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Good Row", txns[0].Vendor)
	assert.Equal(t, "Another Good Row", txns[1].Vendor)
}

func TestImportCSVRequiresAmountColumn(t *testing.T) {
	p := NewPipeline(nil, nil)

	_, err := p.ImportCSV(context.Background(), strings.NewReader("date,description\n2024-01-10,No Amounts"))
	assert.Error(t, err)
}

func TestImportCSVEmptyInput(t *testing.T) {
	p := NewPipeline(nil, nil)

	_, err := p.ImportCSV(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestImportCSVNegativeAmount(t *testing.T) {
	p := NewPipeline(nil, nil)
	p.now = fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	txns, err := p.ImportCSV(context.Background(), strings.NewReader("amount,description\n-42.00,Refund Line"))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, 42.00, txns[0].Amount, "signs are stripped; everything is an expense magnitude")
}
