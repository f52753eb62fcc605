package printadapter

import "math"

const (
	pointsPerInch = 72.0
	mmPerInch     = 25.4
)

// MillimetersToPoints converts a physical length to PDF points (1/72 inch).
func MillimetersToPoints(mm float64) float64 {
	return mm * pointsPerInch / mmPerInch
}

// Shift is the displacement applied to every output page, in millimetres.
// Positive X moves content right, positive Y moves content down the sheet.
type Shift struct {
	XMM float64 `json:"xMm" yaml:"x_mm"`
	YMM float64 `json:"yMm" yaml:"y_mm"`
}

// IsZero reports whether the shift leaves content where it is.
func (s Shift) IsZero() bool {
	return s.XMM == 0 && s.YMM == 0
}

// Points returns the shift in points in sheet terms (X right, Y down).
func (s Shift) Points() (x, y float64) {
	return MillimetersToPoints(s.XMM), MillimetersToPoints(s.YMM)
}

// ContentOffset returns the translation to apply in PDF content space for a
// page displayed with the given /Rotate value. Content space has its origin at
// the bottom left with Y pointing up, so a downward shift is a negative Y.
func (s Shift) ContentOffset(rotate int) (dx, dy float64) {
	vx, down := s.Points()
	vy := -down

	switch normalizeRotation(rotate) {
	case 90:
		dx, dy = -vy, vx
	case 180:
		dx, dy = -vx, -vy
	case 270:
		dx, dy = vy, -vx
	default:
		dx, dy = vx, vy
	}
	// Avoid emitting "-0.00000" into content streams.
	if dx == 0 {
		dx = math.Abs(dx)
	}
	if dy == 0 {
		dy = math.Abs(dy)
	}
	return dx, dy
}

func normalizeRotation(rotate int) int {
	r := rotate % 360
	if r < 0 {
		r += 360
	}
	return r
}
