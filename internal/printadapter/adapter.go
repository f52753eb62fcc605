// Package printadapter shifts the content of every page of a PDF label sheet
// by a fixed physical offset and repeats the document for a number of copies.
//
// An Adapter follows the lifecycle of a platform print job: Layout opens the
// source and reports the output page count, Write materialises the requested
// page ranges into a sink, and Finish releases the source.
package printadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// File is an open source document.
type File interface {
	io.ReadSeeker
	io.Closer
}

// Opener opens the document named by a locator (path, URL, gs:// URI...).
type Opener interface {
	Open(ctx context.Context, locator string) (File, error)
}

// Sink receives the fully assembled output document in a single call.
type Sink interface {
	Write(ctx context.Context, data []byte) error
}

// State of an Adapter.
type State int

const (
	StateIdle State = iota
	StateLayingOut
	StateReady
	StateWriting
	StateFinished
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateLayingOut:
		return "LAYING_OUT"
	case StateReady:
		return "READY"
	case StateWriting:
		return "WRITING"
	case StateFinished:
		return "FINISHED"
	case StateCancelled:
		return "CANCELLED"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultDocumentName is the name reported to the print host.
const DefaultDocumentName = "label_nudger_output.pdf"

// MediaSize is a named sheet size in millimetres.
type MediaSize struct {
	Name     string  `json:"name"`
	WidthMM  float64 `json:"widthMm"`
	HeightMM float64 `json:"heightMm"`
}

// MediaA4 is the sheet size label printers are driven with by default.
var MediaA4 = MediaSize{Name: "ISO_A4", WidthMM: 210, HeightMM: 297}

// Margins in millimetres.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// PrintAttributes are supplied by the host at layout time. Pages are never
// rescaled to fit them; label sheets must print at 100%.
type PrintAttributes struct {
	MediaSize MediaSize
	Margins   Margins
}

// DefaultAttributes is A4 with no margins.
func DefaultAttributes() PrintAttributes {
	return PrintAttributes{MediaSize: MediaA4}
}

// Options configure a print job.
type Options struct {
	Shift  Shift
	Copies int
	// Name is the document name reported by Layout.
	Name   string
	Logger *slog.Logger
}

// LayoutResult is what the host learns from a successful layout.
type LayoutResult struct {
	Name        string
	PageCount   int
	ContentType string
	// Changed is true when the page count differs from the previous layout.
	Changed bool
}

// WriteResult describes a completed write pass.
type WriteResult struct {
	Pages  []int
	Ranges []PageRange
	Bytes  int
}

// source is the document owned by the adapter between Layout and Finish.
type source struct {
	file   File
	doc    *model.Context
	closed bool
}

func (s *source) release() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	s.doc = nil
	return s.file.Close()
}

// Adapter is a single print job. Its methods are safe to call from any
// goroutine but are serialised; the host never runs them concurrently.
type Adapter struct {
	mu      sync.Mutex
	opener  Opener
	locator string
	opts    Options
	jobID   string
	log     *slog.Logger

	state State
	src   *source
	plan  Plan
	attrs PrintAttributes

	transform func(src *model.Context, pageIndex int, shift Shift) ([]byte, error)
}

// New creates an idle adapter for the document at locator.
func New(opener Opener, locator string, opts Options) *Adapter {
	if opts.Name == "" {
		opts.Name = DefaultDocumentName
	}
	opts.Copies = NormalizeCopies(opts.Copies)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jobID := uuid.NewString()
	return &Adapter{
		opener:  opener,
		locator: locator,
		opts:    opts,
		jobID:   jobID,
		log:     logger.With("jobId", jobID, "source", locator),
		state:   StateIdle,

		transform: TransformPage,
	}
}

// JobID identifies the job in logs and records.
func (a *Adapter) JobID() string { return a.jobID }

// State returns the current lifecycle state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// PageCount returns the output page count of the last successful layout.
func (a *Adapter) PageCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.plan.Total()
}

// Layout (re)opens the source document and computes the output page count.
// Any document left open by a previous layout is released first.
func (a *Adapter) Layout(ctx context.Context, attrs PrintAttributes) (LayoutResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		// A cancelled re-layout still invalidates the previous one.
		a.releaseSource()
		a.plan = Plan{}
		a.state = StateCancelled
		a.log.Info("Layout cancelled before start.")
		return LayoutResult{}, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	previous := a.plan.Total()
	a.state = StateLayingOut
	a.releaseSource()
	a.plan = Plan{}
	a.attrs = attrs

	file, err := a.opener.Open(ctx, a.locator)
	if err != nil {
		return LayoutResult{}, a.fail(fmt.Errorf("%w: couldn't open document: %w", ErrDocumentUnreadable, err))
	}
	a.src = &source{file: file}

	doc, err := readDocument(file)
	if err != nil {
		return LayoutResult{}, a.fail(fmt.Errorf("%w: couldn't parse document: %w", ErrDocumentUnreadable, err))
	}
	a.src.doc = doc

	count, err := CountPages(doc)
	if err != nil {
		return LayoutResult{}, a.fail(err)
	}

	a.plan = NewPlan(count, a.opts.Copies)
	a.state = StateReady
	a.log.Info("Layout finished.",
		"sourcePages", count,
		"copies", a.plan.Copies,
		"outputPages", a.plan.Total(),
		"media", attrs.MediaSize.Name,
	)
	return LayoutResult{
		Name:        a.opts.Name,
		PageCount:   a.plan.Total(),
		ContentType: "application/pdf",
		Changed:     previous != a.plan.Total(),
	}, nil
}

// Write materialises the output pages selected by ranges and hands the
// assembled document to sink. Cancellation is observed between pages; a
// cancelled or failed pass never touches the sink.
func (a *Adapter) Write(ctx context.Context, ranges []PageRange, sink Sink) (WriteResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateReady, StateFinished, StateCancelled:
	default:
		return WriteResult{}, fmt.Errorf("%w: state is %s", ErrNotReady, a.state)
	}
	if a.src == nil || a.src.doc == nil {
		return WriteResult{}, fmt.Errorf("%w: no document open", ErrNotReady)
	}
	a.state = StateWriting

	total := a.plan.Total()
	selected := CountSelected(ranges, total)
	if selected == 0 {
		return WriteResult{}, a.fail(fmt.Errorf("%w: ranges %v over %d pages", ErrNothingToWrite, ranges, total))
	}
	if selected > MaxOutputPages {
		return WriteResult{}, a.fail(fmt.Errorf("%w: %d pages, limit is %d", ErrTooManyPages, selected, MaxOutputPages))
	}
	pages := SelectPages(ranges, total)
	a.log.Info("Writing pages.", "selected", len(pages), "outputPages", total)

	transformed := make(map[int][]byte)
	out := make([][]byte, 0, len(pages))
	for _, outputIndex := range pages {
		if err := ctx.Err(); err != nil {
			return WriteResult{}, a.cancel(err, len(out), len(pages))
		}
		srcIndex := a.plan.SourceIndex(outputIndex)
		page, ok := transformed[srcIndex]
		if !ok {
			var err error
			page, err = a.transform(a.src.doc, srcIndex, a.opts.Shift)
			if err != nil {
				return WriteResult{}, a.fail(fmt.Errorf("%w: output page %d (source page %d): %w", ErrPageRenderFailed, outputIndex, srcIndex, err))
			}
			transformed[srcIndex] = page
		}
		out = append(out, page)
	}

	data, err := assemble(out)
	if err != nil {
		return WriteResult{}, a.fail(fmt.Errorf("%w: %w", ErrSinkWriteFailed, err))
	}
	if err := ctx.Err(); err != nil {
		return WriteResult{}, a.cancel(err, len(out), len(pages))
	}
	if err := sink.Write(ctx, data); err != nil {
		if errors.Is(err, context.Canceled) {
			return WriteResult{}, a.cancel(err, len(out), len(pages))
		}
		return WriteResult{}, a.fail(fmt.Errorf("%w: %w", ErrSinkWriteFailed, err))
	}

	a.state = StateFinished
	a.log.Info("Write finished.", "pages", len(pages), "bytes", len(data))
	return WriteResult{Pages: pages, Ranges: CompactPages(pages), Bytes: len(data)}, nil
}

// Finish releases the source document and returns the adapter to idle. It is
// safe to call on every exit path and more than once.
func (a *Adapter) Finish() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseSource()
	a.state = StateIdle
}

func (a *Adapter) cancel(cause error, done, total int) error {
	a.state = StateCancelled
	a.log.Info("Write cancelled; output discarded.", "pagesDone", done, "pagesSelected", total)
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// fail releases the source and records the failure.
func (a *Adapter) fail(err error) error {
	a.releaseSource()
	a.state = StateFailed
	a.log.Error("Print job failed.", "error", err)
	return err
}

func (a *Adapter) releaseSource() {
	if a.src == nil {
		return
	}
	if err := a.src.release(); err != nil {
		a.log.Warn("Failed to close source document.", "error", err)
	}
	a.src = nil
}
