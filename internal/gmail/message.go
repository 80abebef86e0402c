package gmail

import (
	"context"
	"encoding/base64"
	"html"
	"regexp"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/ledgerline/ledgerline/internal/parse"
)

// TextExtractor pulls plain text out of a binary attachment. Extraction
// internals (PDF libraries, OCR, external services) live behind this
// interface; the sync loop only sees text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// NoopExtractor ignores attachments. It is the default when no extractor
// is configured.
type NoopExtractor struct{}

// ExtractText implements TextExtractor.
func (NoopExtractor) ExtractText(context.Context, []byte) (string, error) {
	return "", nil
}

// attachmentRef points at a PDF part whose bytes must be fetched with a
// separate attachments.get call.
type attachmentRef struct {
	attachmentID string
	filename     string
}

var (
	htmlBlockPattern  = regexp.MustCompile(`(?is)<(?:style|script)[^>]*>.*?</(?:style|script)>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

// stripHTML reduces an HTML body to its visible text: style and script
// blocks go entirely, tags become spaces, entities are decoded, and runs
// of spaces collapse.
func stripHTML(body string) string {
	text := htmlBlockPattern.ReplaceAllString(body, " ")
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// messageHeaders converts the API's header list into the parser's type.
func messageHeaders(payload *gmailapi.MessagePart) parse.Headers {
	if payload == nil {
		return nil
	}
	headers := make(parse.Headers, 0, len(payload.Headers))
	for _, h := range payload.Headers {
		headers = append(headers, parse.Header{Name: h.Name, Value: h.Value})
	}
	return headers
}

// flattenParts walks the MIME tree depth-first, collecting the text of
// every text/plain and text/html part plus references to PDF attachments.
func flattenParts(payload *gmailapi.MessagePart) (string, []attachmentRef) {
	var texts []string
	var attachments []attachmentRef

	var walk func(part *gmailapi.MessagePart)
	walk = func(part *gmailapi.MessagePart) {
		if part == nil {
			return
		}

		switch {
		case part.MimeType == "text/plain":
			if decoded := decodePartBody(part); decoded != "" {
				texts = append(texts, decoded)
			}
		case part.MimeType == "text/html":
			if decoded := decodePartBody(part); decoded != "" {
				texts = append(texts, stripHTML(decoded))
			}
		case part.MimeType == "application/pdf" ||
			strings.HasSuffix(strings.ToLower(part.Filename), ".pdf"):
			if part.Body != nil && part.Body.AttachmentId != "" {
				attachments = append(attachments, attachmentRef{
					attachmentID: part.Body.AttachmentId,
					filename:     part.Filename,
				})
			}
		}

		for _, child := range part.Parts {
			walk(child)
		}
	}
	walk(payload)

	return strings.Join(texts, "\n"), attachments
}

func decodePartBody(part *gmailapi.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		// The API sometimes omits padding.
		decoded, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}
