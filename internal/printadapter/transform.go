package printadapter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// newConfiguration is the pdfcpu configuration used for every read and write.
// Label sheets come from all kinds of generators, so validation is relaxed.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// readDocument parses and validates a PDF.
func readDocument(rs io.ReadSeeker) (*model.Context, error) {
	return api.ReadValidateAndOptimize(rs, newConfiguration())
}

// TransformPage extracts the 0-based source page pageIndex into a standalone
// single-page PDF whose content is translated by shift. The page boxes are
// left untouched so the physical size of the sheet never changes, and a zero
// shift leaves the content stream as it was.
func TransformPage(src *model.Context, pageIndex int, shift Shift) ([]byte, error) {
	if err := src.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count source pages: %w", err)
	}
	if pageIndex < 0 || pageIndex >= src.PageCount {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", pageIndex, src.PageCount)
	}
	pageNr := pageIndex + 1
	pageCtx, err := pdfcpu.ExtractPages(src, []int{pageNr}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page %d: %w", pageNr, err)
	}
	if err := pageCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count extracted pages: %w", err)
	}

	pageDict, _, inh, err := pageCtx.PageDict(1, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dict: %w", err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d missing after extraction", pageNr)
	}

	if !shift.IsZero() {
		var content []byte
		if _, found := pageDict.Find("Contents"); found {
			if content, err = pageCtx.PageContent(pageDict, 1); err != nil {
				return nil, fmt.Errorf("failed to read page content: %w", err)
			}
		}

		rotate := 0
		if inh != nil {
			rotate = inh.Rotate
		}
		dx, dy := shift.ContentOffset(rotate)

		var buf bytes.Buffer
		fmt.Fprintf(&buf, "q 1 0 0 1 %s cm\n", formatOffset(dx, dy))
		buf.Write(content)
		buf.WriteString("\nQ\n")

		streamDict, err := pageCtx.NewStreamDictForBuf(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("failed to create content stream: %w", err)
		}
		if err := streamDict.Encode(); err != nil {
			return nil, fmt.Errorf("failed to encode content stream: %w", err)
		}
		indRef, err := pageCtx.IndRefForNewObject(*streamDict)
		if err != nil {
			return nil, fmt.Errorf("failed to register content stream: %w", err)
		}
		pageDict["Contents"] = *indRef
	}

	var out bytes.Buffer
	if err := api.WriteContext(pageCtx, &out); err != nil {
		return nil, fmt.Errorf("failed to write page %d: %w", pageNr, err)
	}
	return out.Bytes(), nil
}

func formatOffset(dx, dy float64) string {
	return fmt.Sprintf("%.5f %.5f", dx, dy)
}

// assemble concatenates single-page PDFs, in order, into one document.
func assemble(pages [][]byte) ([]byte, error) {
	switch len(pages) {
	case 0:
		return nil, ErrNothingToWrite
	case 1:
		return pages[0], nil
	}
	readers := make([]io.ReadSeeker, len(pages))
	for i, p := range pages {
		readers[i] = bytes.NewReader(p)
	}
	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to merge pages: %w", err)
	}
	return out.Bytes(), nil
}
