package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersGet(t *testing.T) {
	headers := Headers{
		{Name: "From", Value: "a@example.com"},
		{Name: "Subject", Value: "hello"},
	}

	assert.Equal(t, "a@example.com", headers.Get("from"))
	assert.Equal(t, "hello", headers.Get("SUBJECT"))
	assert.Empty(t, headers.Get("To"))
	assert.Empty(t, Headers(nil).Get("From"))
}

func TestVendorFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers Headers
		want    string
	}{
		{
			name:    "quoted display name",
			headers: Headers{{Name: "From", Value: `"Whole Foods Market" <receipts@wholefoods.com>`}},
			want:    "Whole Foods Market",
		},
		{
			name:    "unquoted display name before angle bracket",
			headers: Headers{{Name: "From", Value: "Uber Receipts <noreply@uber.com>"}},
			want:    "Uber Receipts",
		},
		{
			name:    "bare address",
			headers: Headers{{Name: "From", Value: "billing@acme.io"}},
			want:    "billing@acme.io",
		},
		{
			name: "subject fallback collapses whitespace",
			headers: Headers{
				{Name: "Subject", Value: "Your   receipt\t from  Acme"},
			},
			want: "Your receipt from Acme",
		},
		{
			name: "long subject rejected",
			headers: Headers{
				{Name: "Subject", Value: strings.Repeat("long ", 30)},
			},
			want: "",
		},
		{name: "no usable headers", headers: Headers{{Name: "To", Value: "me@example.com"}}, want: ""},
		{name: "empty collection", headers: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VendorFromHeaders(tt.headers))
		})
	}
}

func TestDateFromHeaders(t *testing.T) {
	headers := Headers{{Name: "Date", Value: "Wed, 10 Jan 2024 15:04:05 +0000"}}

	got := DateFromHeaders(headers)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, time.January, 10, 15, 4, 5, 0, time.UTC)))

	assert.Nil(t, DateFromHeaders(Headers{{Name: "Date", Value: "not a date"}}))
	assert.Nil(t, DateFromHeaders(nil))
}
