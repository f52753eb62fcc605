package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Lllllllleong/labelnudger/internal/calibration"
	"github.com/Lllllllleong/labelnudger/internal/docio"
	"github.com/Lllllllleong/labelnudger/internal/printadapter"
	"github.com/spf13/cobra"
)

// printFlags are shared by print and stickers print.
type printFlags struct {
	out    string
	copies string
	shiftX float64
	shiftY float64
	pages  string
}

var printOpts printFlags

// printCmd writes a shifted copy of a label sheet
var printCmd = &cobra.Command{
	Use:   "print <file|http(s)://...|gs://bucket/object>",
	Short: "Write a print-ready copy of a label sheet",
	Long: `Reads a PDF label sheet, shifts every page by the calibrated offset and
writes the result. Shift and copies default to the calibration profile.

Pages are 1-based in --pages, e.g. "1-3,5,8-".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrint(cmd, args[0], &printOpts)
	},
}

func init() {
	addPrintFlags(printCmd, &printOpts)
}

func addPrintFlags(cmd *cobra.Command, f *printFlags) {
	cmd.Flags().StringVarP(&f.out, "out", "o", printadapter.DefaultDocumentName, "Output PDF")
	cmd.Flags().StringVar(&f.copies, "copies", "", "Copies of each page (default: profile)")
	cmd.Flags().Float64Var(&f.shiftX, "shift-x", 0, "Horizontal shift in mm, positive moves right (default: profile)")
	cmd.Flags().Float64Var(&f.shiftY, "shift-y", 0, "Vertical shift in mm, positive moves down (default: profile)")
	cmd.Flags().StringVar(&f.pages, "pages", "", "Output pages to write (default: all)")
}

// printJob is a fully resolved print request.
type printJob struct {
	locator string
	out     string
	shift   printadapter.Shift
	copies  int
	ranges  []printadapter.PageRange
}

func resolvePrintJob(cmd *cobra.Command, locator string, f *printFlags) (printJob, error) {
	profile, err := loadProfile()
	if err != nil {
		return printJob{}, err
	}

	job := printJob{
		locator: locator,
		out:     f.out,
		shift:   profile.Shift(),
		copies:  profile.Copies,
		ranges:  printadapter.AllPages,
	}
	if cmd.Flags().Changed("shift-x") {
		job.shift.XMM = f.shiftX
	}
	if cmd.Flags().Changed("shift-y") {
		job.shift.YMM = f.shiftY
	}
	if cmd.Flags().Changed("copies") {
		job.copies = calibration.ParseCopies(f.copies)
	}
	if f.pages != "" {
		job.ranges, err = printadapter.ParsePageRanges(f.pages)
		if err != nil {
			return printJob{}, fmt.Errorf("invalid --pages: %w", err)
		}
	}
	return job, nil
}

func runPrint(cmd *cobra.Command, locator string, f *printFlags) error {
	job, err := resolvePrintJob(cmd, locator, f)
	if err != nil {
		return err
	}
	res, err := executePrint(cmd.Context(), newOpener(), job)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d page(s) to %s\n", len(res.Pages), job.out)
	return nil
}

// executePrint drives one adapter through layout and a single write pass.
func executePrint(ctx context.Context, opener printadapter.Opener, job printJob) (printadapter.WriteResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	adapter := printadapter.New(opener, job.locator, printadapter.Options{
		Shift:  job.shift,
		Copies: job.copies,
		Name:   filepath.Base(job.out),
	})
	defer adapter.Finish()

	slog.Debug("Printing.", "source", job.locator, "shiftXMm", job.shift.XMM, "shiftYMm", job.shift.YMM, "copies", job.copies)

	if _, err := adapter.Layout(ctx, printadapter.DefaultAttributes()); err != nil {
		return printadapter.WriteResult{}, err
	}
	return adapter.Write(ctx, job.ranges, docio.FileSink{Path: job.out})
}
