package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ledgerline/ledgerline/internal/model"
)

// SaveTransaction inserts a single transaction.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (
			id, source, amount, currency, vendor, date,
			category, confidence_score, raw_text, reference_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		txn.ID, string(txn.Source), txn.Amount, txn.Currency,
		nullString(txn.Vendor), txn.Date.UTC(),
		nullString(txn.Category), txn.Confidence,
		nullString(txn.RawText), nullString(txn.ReferenceID),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// SaveTransactions inserts a batch of transactions in one database
// transaction; either all rows land or none do.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, source, amount, currency, vendor, date,
			category, confidence_score, raw_text, reference_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range txns {
		txn := &txns[i]
		if err := validateTransaction(txn); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			txn.ID, string(txn.Source), txn.Amount, txn.Currency,
			nullString(txn.Vendor), txn.Date.UTC(),
			nullString(txn.Category), txn.Confidence,
			nullString(txn.RawText), nullString(txn.ReferenceID),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

// ListTransactions returns transactions ordered by date descending.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, source, amount, currency, vendor, date,
			category, confidence_score, raw_text, reference_id, created_at
		FROM transactions
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txns, nil
}

// CountTransactions returns the total number of stored transactions.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// HasReference reports whether a transaction with the given source and
// reference id is already stored, used to skip re-ingesting synced messages.
func (s *SQLiteStorage) HasReference(ctx context.Context, source model.Source, referenceID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if referenceID == "" {
		return false, nil
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE source = ? AND reference_id = ?",
		string(source), referenceID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return count > 0, nil
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var txn model.Transaction
	var source string
	var vendor, category, rawText, referenceID sql.NullString
	var date, createdAt time.Time

	err := rows.Scan(&txn.ID, &source, &txn.Amount, &txn.Currency,
		&vendor, &date, &category, &txn.Confidence, &rawText, &referenceID, &createdAt)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Source = model.Source(source)
	txn.Vendor = vendor.String
	txn.Category = category.String
	txn.RawText = rawText.String
	txn.ReferenceID = referenceID.String
	txn.Date = date.UTC()
	txn.CreatedAt = createdAt.UTC()
	return txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
