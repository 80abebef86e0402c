package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ledgerline/ledgerline/internal/ingest"
	"github.com/ledgerline/ledgerline/internal/model"
	"github.com/ledgerline/ledgerline/internal/parse"
)

// defaultQuery finds receipt-like mail from the last year. The
// has:attachment clause is deliberately absent so text-only receipts are
// found too.
const defaultQuery = `(receipt OR "payment received" OR "order confirmation" OR invoice OR transaction) newer_than:365d`

// defaultMaxResults caps how many messages one sync pass examines.
const defaultMaxResults = 50

// transactionStore is the slice of the storage layer the syncer needs.
type transactionStore interface {
	HasReference(ctx context.Context, source model.Source, referenceID string) (bool, error)
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
}

// Syncer pulls receipt emails and feeds them through the ingestion
// pipeline.
type Syncer struct {
	service   *gmailapi.Service
	store     transactionStore
	pipeline  *ingest.Pipeline
	extractor TextExtractor

	// Query overrides defaultQuery when set.
	Query string
	// MaxResults overrides defaultMaxResults when positive.
	MaxResults int64
	// Progress, when set, is called after each message with (done, total).
	Progress func(done, total int)
}

// NewSyncer builds a Syncer on top of an authorized token source.
func NewSyncer(ctx context.Context, source oauth2.TokenSource, store transactionStore, pipeline *ingest.Pipeline, extractor TextExtractor) (*Syncer, error) {
	service, err := gmailapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	if extractor == nil {
		extractor = NoopExtractor{}
	}
	return &Syncer{
		service:   service,
		store:     store,
		pipeline:  pipeline,
		extractor: extractor,
	}, nil
}

// Stats summarizes one sync pass.
type Stats struct {
	Found    int
	Imported int
	Skipped  int
	Failed   int
}

// Sync lists matching messages and processes each one. Messages already
// imported (matched by message id, or by the reference extracted from the
// body) and messages without an amount are skipped; per-message failures
// are counted but do not abort the pass.
func (s *Syncer) Sync(ctx context.Context) (Stats, error) {
	query := s.Query
	if query == "" {
		query = defaultQuery
	}
	maxResults := s.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var listResp *gmailapi.ListMessagesResponse
	err := withAPIRetry(func() error {
		var err error
		listResp, err = s.service.Users.Messages.List("me").
			Q(query).MaxResults(maxResults).Context(ctx).Do()
		return err
	})
	if err != nil {
		return Stats{}, fmt.Errorf("listing messages: %w", err)
	}

	stats := Stats{Found: len(listResp.Messages)}
	slog.Info("found candidate messages", "count", stats.Found, "query", query)

	for i, ref := range listResp.Messages {
		if err := s.syncMessage(ctx, ref.Id, &stats); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			slog.Warn("failed to process message", "message_id", ref.Id, "error", err)
			stats.Failed++
		}
		if s.Progress != nil {
			s.Progress(i+1, stats.Found)
		}
	}

	slog.Info("sync complete",
		"found", stats.Found,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}

func (s *Syncer) syncMessage(ctx context.Context, msgID string, stats *Stats) error {
	seen, err := s.store.HasReference(ctx, model.SourceGmail, msgID)
	if err != nil {
		return err
	}
	if seen {
		stats.Skipped++
		return nil
	}

	var msg *gmailapi.Message
	err = withAPIRetry(func() error {
		var err error
		msg, err = s.service.Users.Messages.Get("me", msgID).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("fetching message: %w", err)
	}

	text, attachments := flattenParts(msg.Payload)
	for _, ref := range attachments {
		extracted, err := s.attachmentText(ctx, msgID, ref)
		if err != nil {
			slog.Warn("attachment extraction failed",
				"message_id", msgID, "filename", ref.filename, "error", err)
			continue
		}
		if extracted != "" {
			text += "\n" + extracted
		}
	}

	return s.importMessage(ctx, msgID, text, messageHeaders(msg.Payload), stats)
}

// importMessage runs the pipeline over a fetched message and persists the
// result. The persisted reference id may come from the message body rather
// than the message id, so the reference actually carried by the transaction
// is checked before saving; resyncing the same message must never
// duplicate it.
func (s *Syncer) importMessage(ctx context.Context, msgID, text string, headers parse.Headers, stats *Stats) error {
	txn, err := s.pipeline.Process(ctx, ingest.Message{
		Text:        text,
		ReferenceID: msgID,
		Source:      model.SourceGmail,
		Headers:     headers,
	})
	if ingest.IsSkip(err) {
		stats.Skipped++
		return nil
	}
	if err != nil {
		return err
	}

	seen, err := s.store.HasReference(ctx, txn.Source, txn.ReferenceID)
	if err != nil {
		return err
	}
	if seen {
		stats.Skipped++
		return nil
	}

	if err := s.store.SaveTransaction(ctx, txn); err != nil {
		return err
	}
	stats.Imported++
	return nil
}

func (s *Syncer) attachmentText(ctx context.Context, msgID string, ref attachmentRef) (string, error) {
	var body *gmailapi.MessagePartBody
	err := withAPIRetry(func() error {
		var err error
		body, err = s.service.Users.Messages.Attachments.Get("me", msgID, ref.attachmentID).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("fetching attachment: %w", err)
	}

	data, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(body.Data)
		if err != nil {
			return "", fmt.Errorf("decoding attachment: %w", err)
		}
	}

	return s.extractor.ExtractText(ctx, data)
}

// withAPIRetry retries rate-limited and server-side failures; everything
// else fails immediately.
func withAPIRetry(op func() error) error {
	return retry.Do(
		op,
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
	)
}
