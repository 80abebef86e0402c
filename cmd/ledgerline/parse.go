package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/internal/parse"
)

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [text]",
		Short: "Run the heuristic parser over text and print the result",
		Long: `Parses the given text (or stdin when no argument is supplied) and
prints the extracted transaction fields as JSON. Nothing is persisted;
this is a debugging aid for checking how a receipt will be read.`,
		RunE: func(_ *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 {
				text = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no text to parse")
			}

			result := parse.Parse(text)

			out := struct {
				Amount      *float64   `json:"amount"`
				Currency    string     `json:"currency,omitempty"`
				Date        *time.Time `json:"date"`
				Vendor      string     `json:"vendor,omitempty"`
				ReferenceID string     `json:"reference_id,omitempty"`
				Confidence  float64    `json:"confidence"`
			}{
				Amount:      result.Parsed.Amount,
				Currency:    result.Parsed.Currency,
				Date:        result.Parsed.Date,
				Vendor:      result.Parsed.Vendor,
				ReferenceID: result.Parsed.ReferenceID,
				Confidence:  result.Confidence,
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(out)
		},
	}
}
