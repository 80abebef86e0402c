package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/model"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestImportOFXBankStatement(t *testing.T) {
	p := NewPipeline(nil, &staticRules{rules: []model.Rule{
		{ID: "r1", Pattern: "starbucks", Category: "Dining", Enabled: true},
	}})

	txns, err := p.ImportOFX(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	tx1 := txns[0]
	assert.Equal(t, model.SourceOFX, tx1.Source)
	assert.Equal(t, 25.50, tx1.Amount, "debits flip to positive")
	assert.Equal(t, "USD", tx1.Currency)
	assert.Equal(t, "STARBUCKS STORE #1234", tx1.Vendor)
	assert.Equal(t, "Dining", tx1.Category)
	assert.Equal(t, "2024011501", tx1.ReferenceID)
	assert.Equal(t, 1.0, tx1.Confidence)
	assert.Equal(t, 2024, tx1.Date.Year())
	assert.Equal(t, time.January, tx1.Date.Month())
	assert.Equal(t, 15, tx1.Date.Day())

	tx2 := txns[1]
	assert.Equal(t, "Whole Foods Market", tx2.Vendor)
	assert.Equal(t, 125.00, tx2.Amount)
	assert.Empty(t, tx2.Category)
}

func TestImportOFXCreditCardStatement(t *testing.T) {
	p := NewPipeline(nil, nil)

	txns, err := p.ImportOFX(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, txns, 1)

	assert.Equal(t, "NETFLIX.COM", txns[0].Vendor)
	assert.Equal(t, 45.99, txns[0].Amount)
	assert.Equal(t, "CC2024011001", txns[0].ReferenceID)
}

func TestImportOFXInvalidInput(t *testing.T) {
	p := NewPipeline(nil, nil)

	_, err := p.ImportOFX(context.Background(), strings.NewReader("not valid OFX"))
	assert.Error(t, err)

	_, err = p.ImportOFX(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		txn      ofxgo.Transaction
		expected string
	}{
		{
			name:     "strips POS prefix",
			txn:      ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "strips debit card prefix",
			txn:      ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "memo replaces generic name",
			txn:      ofxgo.Transaction{Name: "DEBIT", Memo: "CORNER DELI NYC"},
			expected: "CORNER DELI NYC",
		},
		{
			name:     "clean name kept as-is",
			txn:      ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "whitespace trimmed",
			txn:      ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, merchantName(tt.txn))
		})
	}
}
