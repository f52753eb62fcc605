package printadapter

import "errors"

var (
	// ErrDocumentUnreadable means the source could not be opened or its page count determined.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrPageRenderFailed means a single page could not be read or transformed.
	ErrPageRenderFailed = errors.New("page render failed")
	// ErrSinkWriteFailed means the assembled document could not be produced or flushed.
	ErrSinkWriteFailed = errors.New("sink write failed")
	// ErrCancelled is returned when the job context is cancelled. It is not a failure.
	ErrCancelled = errors.New("cancelled")
	// ErrNotReady is returned by Write when no successful layout precedes it.
	ErrNotReady = errors.New("adapter not laid out")
	// ErrNothingToWrite is returned when the page ranges select no output page.
	ErrNothingToWrite = errors.New("no pages selected")
	// ErrTooManyPages is returned when the ranges select more than MaxOutputPages pages.
	ErrTooManyPages = errors.New("too many pages selected")
)

// Job outcomes as recorded by callers.
const (
	OutcomeFinished  = "FINISHED"
	OutcomeCancelled = "CANCELLED"
	OutcomeFailed    = "FAILED"
)

// Outcome classifies the error returned by Layout or Write.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeFinished
	case errors.Is(err, ErrCancelled):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
