package ports

import "context"

// Fetcher retrieves the text body of a paste URL. The adapter applies a
// constructor-supplied timeout; a slow or unreachable host surfaces as an
// error rather than a hang.
type Fetcher interface {
	// Fetch downloads url and returns its body as text. Non-2xx responses
	// are errors.
	Fetch(ctx context.Context, url string) (string, error)
}

// DocExtractor turns an uploaded document into a single text blob.
type DocExtractor interface {
	// ExtractText extracts all text from the document bytes. An
	// unparsable document is an error, not an empty blob.
	ExtractText(data []byte) (string, error)
}
