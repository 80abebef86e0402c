package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVendor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "at phrase", text: "You made a purchase at Whole Foods today", want: "Whole Foods today"},
		{name: "at phrase stops at punctuation", text: "Purchase at Whole Foods: $45.67", want: "Whole Foods"},
		{name: "from phrase", text: "Payment received from Acme Corp!", want: "Acme Corp"},
		{name: "to phrase", text: "You sent money to Jane Smith!", want: "Jane Smith"},
		{name: "at beats from", text: "from Acme! Spent at Starbucks!", want: "Starbucks"},
		{name: "keyword line fallback", text: "Receipt #1042: Blue Bottle\nThanks for visiting", want: "1042 Blue Bottle"},
		{name: "no candidate", text: "!!!", want: ""},
		{name: "empty text", text: "", want: ""},
		{
			name: "too long candidate rejected",
			text: "Receipt " + strings.Repeat("x", 70),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVendor(tt.text))
		})
	}
}
