package calibration

import (
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
)

// SheetOptions control the calibration sheet.
type SheetOptions struct {
	// MarginMM is the distance of the corner targets from the sheet edges.
	MarginMM float64
}

const (
	defaultSheetMarginMM = 15
	targetArmMM          = 5
	targetRadiusMM       = 2
)

// WriteSheet renders an A4 calibration sheet: targets at a known distance
// from each corner and at the centre, plus millimetre rulers along the top
// and left edges. Printing it unshifted and measuring where the targets land
// gives the nudge to store.
func WriteSheet(w io.Writer, opts SheetOptions) error {
	margin := opts.MarginMM
	if margin <= 0 {
		margin = defaultSheetMarginMM
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Label Nudger calibration sheet", true)
	pdf.SetCreator("labelnudger", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)

	width, height := pdf.GetPageSize()
	for _, t := range [][2]float64{
		{margin, margin},
		{width - margin, margin},
		{margin, height - margin},
		{width - margin, height - margin},
		{width / 2, height / 2},
	} {
		drawTarget(pdf, t[0], t[1])
	}

	for x := 0; float64(x) <= width; x++ {
		pdf.Line(float64(x), 0, float64(x), tickLength(x))
	}
	for y := 0; float64(y) <= height; y++ {
		pdf.Line(0, float64(y), tickLength(y), float64(y))
	}

	pdf.SetFont("Helvetica", "", 9)
	for x := 10; float64(x) < width; x += 10 {
		pdf.Text(float64(x)-1.5, 9, fmt.Sprint(x))
	}
	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		"Print at 100% (actual size), no fit-to-page.",
		fmt.Sprintf("Each corner target should sit %.0f mm from both edges.", margin),
		"Measure the error and nudge by the same amount in the opposite direction.",
	}
	for i, l := range lines {
		pdf.Text(margin+10, height/2+15+float64(i)*6, l)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render calibration sheet: %w", err)
	}
	return nil
}

func drawTarget(pdf *fpdf.Fpdf, x, y float64) {
	pdf.Line(x-targetArmMM, y, x+targetArmMM, y)
	pdf.Line(x, y-targetArmMM, x, y+targetArmMM)
	pdf.Circle(x, y, targetRadiusMM, "D")
}

// tickLength gives 1 mm, 5 mm and 10 mm marks increasing lengths.
func tickLength(mm int) float64 {
	switch {
	case mm%10 == 0:
		return 6
	case mm%5 == 0:
		return 4
	}
	return 2
}
