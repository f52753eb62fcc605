package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/Lllllllleong/labelnudger/internal/calibration"
	"github.com/Lllllllleong/labelnudger/internal/catalog"
	"github.com/Lllllllleong/labelnudger/internal/printadapter"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useProfile points the CLI at a fresh profile in a temp dir.
func useProfile(t *testing.T, c *calibration.Calibration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	if c != nil {
		require.NoError(t, c.Save(path))
	}
	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })
	return path
}

func writeSheet(t *testing.T, pages int) string {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(20, 20, fmt.Sprintf("sheet %d", i))
	}
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

func TestNudgeSavesProfile(t *testing.T) {
	path := useProfile(t, nil)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.Flags().Float64Var(&nudgeStep, "step", 0, "")
	cmd.SetOut(&out)

	require.NoError(t, runNudge(cmd, []string{"left"}))
	require.NoError(t, runNudge(cmd, []string{"DOWN"}))
	assert.Contains(t, out.String(), "Left: 0.5 mm")
	assert.Contains(t, out.String(), "Down: 0.5 mm")

	c, err := calibration.Load(path)
	require.NoError(t, err)
	assert.Equal(t, -0.5, c.ShiftXMM)
	assert.Equal(t, 0.5, c.ShiftYMM)

	require.NoError(t, runNudge(cmd, []string{"reset"}))
	c, err = calibration.Load(path)
	require.NoError(t, err)
	assert.Zero(t, c.ShiftXMM)
	assert.Zero(t, c.ShiftYMM)

	assert.Error(t, runNudge(cmd, []string{"sideways"}))
}

func TestNudgeStep(t *testing.T) {
	path := useProfile(t, nil)
	cmd := &cobra.Command{}
	cmd.Flags().Float64Var(&nudgeStep, "step", 0, "")
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.Flags().Parse([]string{"--step", "0.25"}))

	require.NoError(t, runNudge(cmd, []string{"right"}))
	c, err := calibration.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, c.StepMM)
	assert.Equal(t, 0.25, c.ShiftXMM)

	require.NoError(t, cmd.Flags().Parse([]string{"--step=-1"}))
	assert.Error(t, runNudge(cmd, []string{"right"}))
}

func TestResolvePrintJob(t *testing.T) {
	useProfile(t, &calibration.Calibration{ShiftXMM: 1, ShiftYMM: 2, StepMM: 0.5, Copies: 3})

	var f printFlags
	cmd := &cobra.Command{}
	addPrintFlags(cmd, &f)
	job, err := resolvePrintJob(cmd, "sheet.pdf", &f)
	require.NoError(t, err)
	assert.Equal(t, printadapter.Shift{XMM: 1, YMM: 2}, job.shift)
	assert.Equal(t, 3, job.copies)
	assert.Equal(t, printadapter.AllPages, job.ranges)
	assert.Equal(t, printadapter.DefaultDocumentName, job.out)

	require.NoError(t, cmd.Flags().Parse([]string{"--shift-x", "-0.5", "--copies", "2", "--pages", "2-3", "-o", "x.pdf"}))
	job, err = resolvePrintJob(cmd, "sheet.pdf", &f)
	require.NoError(t, err)
	assert.Equal(t, printadapter.Shift{XMM: -0.5, YMM: 2}, job.shift)
	assert.Equal(t, 2, job.copies)
	assert.Equal(t, []printadapter.PageRange{{Start: 1, End: 2}}, job.ranges)
	assert.Equal(t, "x.pdf", job.out)

	require.NoError(t, cmd.Flags().Parse([]string{"--pages", "3-1"}))
	_, err = resolvePrintJob(cmd, "sheet.pdf", &f)
	assert.Error(t, err)
}

func TestExecutePrint(t *testing.T) {
	src := writeSheet(t, 2)
	out := filepath.Join(t.TempDir(), "out", "nudged.pdf")

	res, err := executePrint(context.Background(), newOpener(), printJob{
		locator: src,
		out:     out,
		shift:   printadapter.Shift{XMM: 1, YMM: 1},
		copies:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, res.Pages)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, res.Bytes, len(data))
}

func TestExecutePrintMissingSource(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nudged.pdf")
	_, err := executePrint(context.Background(), newOpener(), printJob{
		locator: filepath.Join(t.TempDir(), "missing.pdf"),
		out:     out,
	})
	require.ErrorIs(t, err, printadapter.ErrDocumentUnreadable)
	assert.NoFileExists(t, out)
}

func TestStickersList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"name":"Fox Kit","url":"https://example.test/fox.pdf"},{"name":"","url":"x"}]`)
	}))
	defer srv.Close()
	useProfile(t, &calibration.Calibration{StepMM: 0.5, Copies: 1, CatalogURL: srv.URL})

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	require.NoError(t, runStickersList(cmd, nil))
	assert.Contains(t, out.String(), "fox_kit_65up.pdf")
	assert.Contains(t, out.String(), "https://example.test/fox.pdf")

	_, err := findSticker(context.Background(), "owl")
	assert.Error(t, err)
	s, err := findSticker(context.Background(), "fox kit")
	require.NoError(t, err)
	assert.Equal(t, "Fox Kit", s.Name)
}

func TestStickersPullNeedsNameOrAll(t *testing.T) {
	useProfile(t, nil)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	assert.Error(t, runStickersPull(cmd, nil))
}

func TestSheetCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "calibration.pdf")
	old := sheetOut
	sheetOut = out
	t.Cleanup(func() { sheetOut = old })

	var buf bytes.Buffer
	sheetCmd.SetOut(&buf)
	sheetCmd.SetContext(context.Background())
	require.NoError(t, sheetCmd.RunE(sheetCmd, nil))
	assert.FileExists(t, out)
	assert.Contains(t, buf.String(), out)
}

func TestOpenCatalog(t *testing.T) {
	useProfile(t, &calibration.Calibration{StepMM: 0.5, Copies: 1, CatalogURL: "https://example.test/profile.json"})
	old := stickerCatalog
	t.Cleanup(func() { stickerCatalog = old })

	stickerCatalog = ""
	c, closeCatalog, err := openCatalog(context.Background())
	require.NoError(t, err)
	require.IsType(t, &catalog.HTTPCatalog{}, c)
	assert.Equal(t, "https://example.test/profile.json", c.(*catalog.HTTPCatalog).URL)
	assert.NoError(t, closeCatalog())

	stickerCatalog = "https://example.test/flag.json"
	c, _, err = openCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/flag.json", c.(*catalog.HTTPCatalog).URL)

	stickerCatalog = "firestore://only-a-project"
	_, _, err = openCatalog(context.Background())
	assert.Error(t, err)
}
