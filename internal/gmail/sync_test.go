package gmail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ingest"
	"github.com/ledgerline/ledgerline/internal/model"
	"github.com/ledgerline/ledgerline/internal/parse"
)

type memoryTransactionStore struct {
	saved []model.Transaction
}

func (m *memoryTransactionStore) HasReference(_ context.Context, source model.Source, referenceID string) (bool, error) {
	for _, txn := range m.saved {
		if txn.Source == source && txn.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryTransactionStore) SaveTransaction(_ context.Context, txn *model.Transaction) error {
	m.saved = append(m.saved, *txn)
	return nil
}

func newTestSyncer(store transactionStore) *Syncer {
	return &Syncer{
		store:     store,
		pipeline:  ingest.NewPipeline(nil, nil),
		extractor: NoopExtractor{},
	}
}

func TestImportMessageResyncWithBodyReference(t *testing.T) {
	store := &memoryTransactionStore{}
	syncer := newTestSyncer(store)

	// The body carries its own reference, so the stored reference differs
	// from the message id.
	const text = "Payment of $45.67 to Whole Foods, ref: TXN12345"

	var stats Stats
	require.NoError(t, syncer.importMessage(context.Background(), "gmail-msg-001", text, parse.Headers{}, &stats))
	require.Len(t, store.saved, 1)
	assert.Equal(t, "TXN12345", store.saved[0].ReferenceID)
	assert.Equal(t, model.SourceGmail, store.saved[0].Source)
	assert.Equal(t, 1, stats.Imported)

	// A second pass sees the same message again. Its id was never stored,
	// but the body reference was; the message must not import twice.
	require.NoError(t, syncer.importMessage(context.Background(), "gmail-msg-001", text, parse.Headers{}, &stats))
	assert.Len(t, store.saved, 1)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
}

func TestImportMessageResyncWithMessageIDReference(t *testing.T) {
	store := &memoryTransactionStore{}
	syncer := newTestSyncer(store)

	// No reference token in the body, so the message id becomes the
	// stored reference.
	const text = "Payment of $12.00 received"

	var stats Stats
	require.NoError(t, syncer.importMessage(context.Background(), "gmail-msg-002", text, parse.Headers{}, &stats))
	require.Len(t, store.saved, 1)
	assert.Equal(t, "gmail-msg-002", store.saved[0].ReferenceID)

	require.NoError(t, syncer.importMessage(context.Background(), "gmail-msg-002", text, parse.Headers{}, &stats))
	assert.Len(t, store.saved, 1)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
}

func TestImportMessageSkipsWithoutAmount(t *testing.T) {
	store := &memoryTransactionStore{}
	syncer := newTestSyncer(store)

	var stats Stats
	require.NoError(t, syncer.importMessage(context.Background(), "gmail-msg-003",
		"Your order has shipped", parse.Headers{}, &stats))
	assert.Empty(t, store.saved)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Imported)
}
