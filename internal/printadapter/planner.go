package printadapter

import (
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Plan maps output pages of a multi-copy print job back to source pages.
// Output pages repeat the source cyclically: with 3 source pages and 2 copies
// the output is 0 1 2 0 1 2.
type Plan struct {
	SourcePages int
	Copies      int
}

// NewPlan builds a plan, treating a non-positive copy count as a single copy.
func NewPlan(sourcePageCount, copies int) Plan {
	if sourcePageCount < 0 {
		sourcePageCount = 0
	}
	return Plan{SourcePages: sourcePageCount, Copies: NormalizeCopies(copies)}
}

// NormalizeCopies returns copies, or 1 when copies is zero or negative.
func NormalizeCopies(copies int) int {
	if copies < 1 {
		return 1
	}
	return copies
}

// MaxOutputPages bounds how many pages one write pass may materialise.
const MaxOutputPages = 100000

// Total is the number of pages the job produces, saturating at math.MaxInt.
func (p Plan) Total() int {
	copies := NormalizeCopies(p.Copies)
	if p.SourcePages <= 0 {
		return 0
	}
	if copies > math.MaxInt/p.SourcePages {
		return math.MaxInt
	}
	return p.SourcePages * copies
}

// SourceIndex returns the 0-based source page printed at outputIndex.
// An empty source maps everything to page 0.
func (p Plan) SourceIndex(outputIndex int) int {
	if p.SourcePages == 0 {
		return 0
	}
	return outputIndex % p.SourcePages
}

// CountPages reports the page count of a parsed document.
func CountPages(ctx *model.Context) (int, error) {
	if ctx == nil {
		return 0, fmt.Errorf("%w: no document loaded", ErrDocumentUnreadable)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("%w: failed to get page count: %w", ErrDocumentUnreadable, err)
	}
	return ctx.PageCount, nil
}
