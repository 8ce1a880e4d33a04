package summarizer

import "context"

// Request carries one document's content to be summarized.
type Request struct {
	SourceName string
	URL        string
	Content    string
	// Previous is the last-known content when HasPrevious is set; the
	// summary then describes the change rather than the document.
	Previous    string
	HasPrevious bool
}

// Summarizer produces a human-readable description of a new or changed
// document. Implementations always return non-empty text: when the external
// service cannot be used they return one of the sentinel strings below
// instead of failing.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) string
}

// Degraded-path sentinels. Callers must not treat these as real analysis.
const (
	FallbackFirstObservation = "Change tracking started for this document. Automated summary unavailable (no API key configured) - review the source directly."
	FallbackUpdate           = "This document has changed since the last check. Automated summary unavailable (no API key configured) - review the source directly."
	FallbackFailed           = "A change was detected but could not be summarised automatically - review the document manually."
)
