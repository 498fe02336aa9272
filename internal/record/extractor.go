package record

import "context"

// Extractor turns unstructured medical text into a validated Record.
// The matching engine depends only on this contract so the simulated parser
// can be swapped for a real language-model backend without touching the
// engine.
type Extractor interface {
	ExtractFromText(ctx context.Context, text string) (Record, error)
}
