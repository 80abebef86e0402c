package llm

import (
	"context"

	"github.com/ledgerline/ledgerline/internal/model"
	"github.com/ledgerline/ledgerline/internal/parse"
)

// mockCap is the ceiling on confidence a mock parse may report; the mock has
// no more information than the heuristics it reuses.
const mockCap = 0.4

// MockParser is a Parser that re-runs the heuristic parser and caps the
// reported confidence. It keeps the system runnable without an API key and
// stands in for a real provider in tests.
type MockParser struct {
	// Result, when set, is returned verbatim instead of a heuristic parse.
	Result *model.ParseResult
	// Err, when set, is returned for every call.
	Err error
	// Calls records each text passed to Parse.
	Calls []string
}

// Parse implements Parser.
func (m *MockParser) Parse(_ context.Context, text string) (model.ParseResult, error) {
	m.Calls = append(m.Calls, text)

	if m.Err != nil {
		return model.ParseResult{}, m.Err
	}
	if m.Result != nil {
		return *m.Result, nil
	}

	result := parse.Parse(text)
	if result.Confidence > mockCap {
		result.Confidence = mockCap
	}
	return result, nil
}
