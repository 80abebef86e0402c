package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/model"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX repairs the formatting quirks banks ship in real OFX/QFX
// exports: leading blank lines, mixed-case SEVERITY values, and SGML-style
// opening tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagPattern.ReplaceAllString(content, "$1>")
	return content
}

// ImportOFX parses an OFX/QFX statement export and converts its bank and
// credit card transactions. Statement amounts are exact, so confidence is
// 1.0; debits arrive negative and are flipped to the positive expense
// convention used everywhere else.
func (p *Pipeline) ImportOFX(ctx context.Context, r io.Reader) ([]*model.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parsing OFX file: %w", err)
	}

	var txns []*model.Transaction
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if ok && stmt.BankTranList != nil {
			converted, err := p.convertStatement(ctx, stmt.BankTranList.Transactions, stmt.CurDef.String())
			if err != nil {
				return nil, err
			}
			txns = append(txns, converted...)
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if ok && stmt.BankTranList != nil {
			converted, err := p.convertStatement(ctx, stmt.BankTranList.Transactions, stmt.CurDef.String())
			if err != nil {
				return nil, err
			}
			txns = append(txns, converted...)
		}
	}

	slog.Info("parsed OFX statement", "transactions", len(txns))
	return txns, nil
}

func (p *Pipeline) convertStatement(ctx context.Context, ofxTxns []ofxgo.Transaction, currency string) ([]*model.Transaction, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}

	var txns []*model.Transaction
	for _, ofxTx := range ofxTxns {
		amount, _ := ofxTx.TrnAmt.Float64()
		if amount < 0 {
			amount = -amount
		}

		vendor := merchantName(ofxTx)
		rawText := strings.TrimSpace(string(ofxTx.Name) + " " + string(ofxTx.Memo))
		category, err := p.categorize(ctx, vendor, rawText)
		if err != nil {
			return nil, err
		}

		txns = append(txns, &model.Transaction{
			ID:          uuid.NewString(),
			Source:      model.SourceOFX,
			Amount:      amount,
			Currency:    currency,
			Vendor:      vendor,
			Category:    category,
			Date:        ofxTx.DtPosted.Time.UTC(),
			Confidence:  1.0,
			RawText:     rawText,
			ReferenceID: string(ofxTx.FiTID),
		})
	}
	return txns, nil
}

// noisePrefixes are processor boilerplate banks prepend to the payee name.
var noisePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// merchantName picks the cleanest vendor string an OFX record offers:
// the PAYEE aggregate when present, otherwise NAME, falling back to MEMO
// when NAME is a generic word like "DEBIT".
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip a leading "MM/DD " stamp some processors include.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
