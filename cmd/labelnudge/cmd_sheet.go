package main

import (
	"bytes"
	"fmt"

	"github.com/Lllllllleong/labelnudger/internal/calibration"
	"github.com/Lllllllleong/labelnudger/internal/docio"
	"github.com/spf13/cobra"
)

var (
	sheetOut    string
	sheetMargin float64
)

// sheetCmd writes the calibration target sheet
var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Write the calibration sheet",
	Long: `Writes an A4 sheet with targets at a fixed distance from each corner.
Print it unshifted, measure how far the targets moved and nudge until they
sit on the marks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var buf bytes.Buffer
		if err := calibration.WriteSheet(&buf, calibration.SheetOptions{MarginMM: sheetMargin}); err != nil {
			return fmt.Errorf("failed to render calibration sheet: %w", err)
		}
		if err := (docio.FileSink{Path: sheetOut}).Write(cmd.Context(), buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote calibration sheet to %s\n", sheetOut)
		return nil
	},
}

func init() {
	sheetCmd.Flags().StringVarP(&sheetOut, "out", "o", "calibration.pdf", "Output PDF")
	sheetCmd.Flags().Float64Var(&sheetMargin, "margin", 0, "Target distance from the sheet edges in mm (default 15)")
}
