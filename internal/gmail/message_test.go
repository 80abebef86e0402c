package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tags become spaces",
			input:    "<p>Total: <b>$45.67</b></p>",
			expected: "Total: $45.67",
		},
		{
			name:     "style blocks removed entirely",
			input:    "<style>.x { color: red; }</style>Amount 10.00",
			expected: "Amount 10.00",
		},
		{
			name:     "script blocks removed entirely",
			input:    "<script>alert('x')</script>paid 5.00",
			expected: "paid 5.00",
		},
		{
			name:     "entities decoded",
			input:    "Fish &amp; Chips &pound;12.50",
			expected: "Fish & Chips £12.50",
		},
		{
			name:     "blank lines dropped",
			input:    "line one\n\n\n  \nline two",
			expected: "line one\nline two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripHTML(tt.input))
		})
	}
}

func TestFlattenPartsMultipart(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmailapi.MessagePartBody{Data: b64("Receipt: $45.67")},
					},
					{
						MimeType: "text/html",
						Body:     &gmailapi.MessagePartBody{Data: b64("<p>Receipt: <b>$45.67</b></p>")},
					},
				},
			},
			{
				MimeType: "application/pdf",
				Filename: "receipt.pdf",
				Body:     &gmailapi.MessagePartBody{AttachmentId: "att-1"},
			},
		},
	}

	text, attachments := flattenParts(payload)
	assert.Contains(t, text, "Receipt: $45.67")
	require.Len(t, attachments, 1)
	assert.Equal(t, "att-1", attachments[0].attachmentID)
	assert.Equal(t, "receipt.pdf", attachments[0].filename)
}

func TestFlattenPartsPDFByFilename(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "application/octet-stream",
				Filename: "Invoice-2024.PDF",
				Body:     &gmailapi.MessagePartBody{AttachmentId: "att-2"},
			},
		},
	}

	_, attachments := flattenParts(payload)
	require.Len(t, attachments, 1)
	assert.Equal(t, "att-2", attachments[0].attachmentID)
}

func TestFlattenPartsUnpaddedBase64(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body: &gmailapi.MessagePartBody{
			Data: base64.RawURLEncoding.EncodeToString([]byte("total 9.99")),
		},
	}

	text, _ := flattenParts(payload)
	assert.Equal(t, "total 9.99", text)
}

func TestMessageHeaders(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Headers: []*gmailapi.MessagePartHeader{
			{Name: "From", Value: `"Acme" <billing@acme.test>`},
			{Name: "Subject", Value: "Your receipt"},
		},
	}

	headers := messageHeaders(payload)
	assert.Equal(t, `"Acme" <billing@acme.test>`, headers.Get("from"))
	assert.Equal(t, "Your receipt", headers.Get("Subject"))

	assert.Nil(t, messageHeaders(nil))
}
