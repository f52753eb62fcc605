package printadapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"
)

// samplePDF renders an A4 document whose page i carries the text "label sheet page i".
func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(72, 72, fmt.Sprintf("label sheet page %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func parsePDF(t *testing.T, data []byte) *model.Context {
	t.Helper()
	doc, err := readDocument(bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, doc.EnsurePageCount())
	return doc
}

// pageContent returns the decoded content stream of the 1-based page pageNr.
func pageContent(t *testing.T, doc *model.Context, pageNr int) []byte {
	t.Helper()
	d, _, _, err := doc.PageDict(pageNr, false)
	require.NoError(t, err)
	content, err := doc.PageContent(d, pageNr)
	require.NoError(t, err)
	return content
}

func pageSize(t *testing.T, doc *model.Context, pageNr int) (w, h float64) {
	t.Helper()
	_, _, inh, err := doc.PageDict(pageNr, false)
	require.NoError(t, err)
	require.NotNil(t, inh.MediaBox)
	return inh.MediaBox.Width(), inh.MediaBox.Height()
}

type memFile struct {
	*bytes.Reader
	closes int
}

func (f *memFile) Close() error {
	f.closes++
	return nil
}

type memOpener struct {
	data  []byte
	err   error
	files []*memFile
}

func (o *memOpener) Open(_ context.Context, _ string) (File, error) {
	if o.err != nil {
		return nil, o.err
	}
	f := &memFile{Reader: bytes.NewReader(o.data)}
	o.files = append(o.files, f)
	return f, nil
}

type memSink struct {
	writes int
	data   []byte
	err    error
}

func (s *memSink) Write(_ context.Context, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.data = append([]byte(nil), data...)
	return nil
}

// countdownCtx reports cancellation once Err has been polled n times.
type countdownCtx struct {
	context.Context
	remaining int
}

func (c *countdownCtx) Err() error {
	if c.remaining <= 0 {
		return context.Canceled
	}
	c.remaining--
	return nil
}

var errBoom = errors.New("boom")
