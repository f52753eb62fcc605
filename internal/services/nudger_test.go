package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/Lllllllleong/labelnudger/internal/calibration"
	"github.com/Lllllllleong/labelnudger/internal/models"
	"github.com/Lllllllleong/labelnudger/internal/printadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelSheet(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(20, 20, fmt.Sprintf("sheet %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

type closingReader struct{ *bytes.Reader }

func (closingReader) Close() error { return nil }

type stubOpener struct {
	data []byte
	err  error
}

func (o stubOpener) Open(context.Context, string) (printadapter.File, error) {
	if o.err != nil {
		return nil, o.err
	}
	return closingReader{bytes.NewReader(o.data)}, nil
}

type stubSink struct {
	data []byte
	err  error
}

func (s *stubSink) Write(_ context.Context, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.data = append([]byte(nil), data...)
	return nil
}

type statusUpdate struct {
	status string
	fields map[string]interface{}
}

type fakeJobs struct {
	created   []models.PrintJob
	updates   []statusUpdate
	createErr error
}

func (j *fakeJobs) Create(_ context.Context, job models.PrintJob) error {
	if j.createErr != nil {
		return j.createErr
	}
	j.created = append(j.created, job)
	return nil
}

func (j *fakeJobs) UpdateStatus(_ context.Context, _ string, status string, fields map[string]interface{}) error {
	j.updates = append(j.updates, statusUpdate{status: status, fields: fields})
	return nil
}

func (j *fakeJobs) lastStatus() string {
	if len(j.updates) == 0 {
		return ""
	}
	return j.updates[len(j.updates)-1].status
}

func newTestNudger(opener printadapter.Opener, sink *stubSink, jobs *fakeJobs) *NudgerFunction {
	return &NudgerFunction{
		opener: opener,
		jobs:   jobs,
		newSink: func(jobID string) (printadapter.Sink, string) {
			return sink, "gs://nudged/" + jobID + "/nudged.pdf"
		},
		config: NudgerConfig{ProjectID: "test", OutputBucket: "nudged", CollectionName: "printJobs"},
	}
}

func TestNudgerProcess(t *testing.T) {
	sink := &stubSink{}
	jobs := &fakeJobs{}
	f := newTestNudger(stubOpener{data: labelSheet(t, 2)}, sink, jobs)

	resp, err := f.Process(context.Background(), &models.NudgeRequest{
		SourceURI: "gs://stickers/fox.pdf",
		ShiftXMM:  1.5,
		ShiftYMM:  -0.5,
		Copies:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 6, resp.PageCount)
	assert.Equal(t, 6, resp.Pages)
	assert.Equal(t, "gs://nudged/"+resp.JobID+"/nudged.pdf", resp.OutputURI)
	assert.NotEmpty(t, sink.data)

	require.Len(t, jobs.created, 1)
	job := jobs.created[0]
	assert.Equal(t, resp.JobID, job.JobID)
	assert.Equal(t, StatusLayout, job.Status)
	assert.Equal(t, 3, job.Copies)
	assert.Equal(t, 1.5, job.ShiftXMM)

	require.Len(t, jobs.updates, 2)
	assert.Equal(t, StatusWriting, jobs.updates[0].status)
	assert.Equal(t, 6, jobs.updates[0].fields["pageCount"])
	assert.Equal(t, printadapter.OutcomeFinished, jobs.updates[1].status)
	assert.Equal(t, resp.OutputURI, jobs.updates[1].fields["outputUri"])
}

func TestNudgerProcessPageRanges(t *testing.T) {
	sink := &stubSink{}
	f := newTestNudger(stubOpener{data: labelSheet(t, 4)}, sink, &fakeJobs{})

	resp, err := f.Process(context.Background(), &models.NudgeRequest{
		SourceURI: "sheet.pdf",
		Pages:     []models.PageRange{{Start: 0, End: 0}, {Start: 2, End: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.PageCount)
	assert.Equal(t, 3, resp.Pages)
}

func TestNudgerProcessInvalidRequest(t *testing.T) {
	jobs := &fakeJobs{}
	f := newTestNudger(stubOpener{}, &stubSink{}, jobs)

	_, err := f.Process(context.Background(), &models.NudgeRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.Process(context.Background(), &models.NudgeRequest{
		SourceURI: "sheet.pdf",
		Pages:     []models.PageRange{{Start: 3, End: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.Process(context.Background(), &models.NudgeRequest{
		SourceURI: "sheet.pdf",
		Copies:    calibration.MaxCopies + 1,
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, jobs.created)
}

func TestNudgerProcessMaxCopies(t *testing.T) {
	sink := &stubSink{}
	f := newTestNudger(stubOpener{data: labelSheet(t, 2)}, sink, &fakeJobs{})

	resp, err := f.Process(context.Background(), &models.NudgeRequest{
		SourceURI: "sheet.pdf",
		Copies:    calibration.MaxCopies,
		Pages:     []models.PageRange{{Start: 0, End: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2*calibration.MaxCopies, resp.PageCount)
	assert.Equal(t, 3, resp.Pages)
}

func TestNudgerProcessUnreadable(t *testing.T) {
	jobs := &fakeJobs{}
	f := newTestNudger(stubOpener{data: []byte("not a pdf")}, &stubSink{}, jobs)

	_, err := f.Process(context.Background(), &models.NudgeRequest{SourceURI: "sheet.pdf"})
	require.ErrorIs(t, err, printadapter.ErrDocumentUnreadable)
	assert.Equal(t, printadapter.OutcomeFailed, jobs.lastStatus())
	assert.Contains(t, jobs.updates[0].fields["errorDetails"], "layout failed")
}

func TestNudgerProcessSinkFailure(t *testing.T) {
	jobs := &fakeJobs{}
	f := newTestNudger(stubOpener{data: labelSheet(t, 1)}, &stubSink{err: errors.New("bucket gone")}, jobs)

	_, err := f.Process(context.Background(), &models.NudgeRequest{SourceURI: "sheet.pdf"})
	require.ErrorIs(t, err, printadapter.ErrSinkWriteFailed)
	assert.Equal(t, printadapter.OutcomeFailed, jobs.lastStatus())
}

func TestNudgerProcessCancelled(t *testing.T) {
	jobs := &fakeJobs{}
	f := newTestNudger(stubOpener{data: labelSheet(t, 1)}, &stubSink{}, jobs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Process(ctx, &models.NudgeRequest{SourceURI: "sheet.pdf"})
	require.ErrorIs(t, err, printadapter.ErrCancelled)
	assert.Equal(t, printadapter.OutcomeCancelled, jobs.lastStatus())
}

func TestNudgerProcessCreateFailure(t *testing.T) {
	jobs := &fakeJobs{createErr: errors.New("firestore down")}
	sink := &stubSink{}
	f := newTestNudger(stubOpener{data: labelSheet(t, 1)}, sink, jobs)

	_, err := f.Process(context.Background(), &models.NudgeRequest{SourceURI: "sheet.pdf"})
	require.Error(t, err)
	assert.Empty(t, jobs.updates)
	assert.Nil(t, sink.data)
}
