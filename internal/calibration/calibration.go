// Package calibration holds the printer calibration that applies to every
// label sheet: the accumulated nudge, the nudge step and the default copies.
package calibration

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Lllllllleong/labelnudger/internal/printadapter"
)

const (
	DefaultStepMM = 0.5
	MaxCopies     = 9999
)

// Direction of a nudge as seen on the printed sheet.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection accepts up, down, left and right in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q (want up, down, left or right)", s)
}

// Calibration is the persisted printer offset.
type Calibration struct {
	ShiftXMM float64 `yaml:"shift_x_mm"`
	ShiftYMM float64 `yaml:"shift_y_mm"`
	StepMM   float64 `yaml:"step_mm"`
	Copies   int     `yaml:"copies"`
	// CatalogURL overrides the sticker index location.
	CatalogURL string `yaml:"catalog_url,omitempty"`
}

// Default is a zero offset, 0.5 mm steps and one copy.
func Default() *Calibration {
	return &Calibration{StepMM: DefaultStepMM, Copies: 1}
}

func (c *Calibration) step() float64 {
	if c.StepMM <= 0 {
		return DefaultStepMM
	}
	return c.StepMM
}

// Nudge moves the printed content one step in direction d.
func (c *Calibration) Nudge(d Direction) {
	switch d {
	case Up:
		c.ShiftYMM -= c.step()
	case Down:
		c.ShiftYMM += c.step()
	case Left:
		c.ShiftXMM -= c.step()
	case Right:
		c.ShiftXMM += c.step()
	}
	c.ShiftXMM, c.ShiftYMM = round(c.ShiftXMM, 3), round(c.ShiftYMM, 3)
}

// Reset puts the content back where the document places it.
func (c *Calibration) Reset() {
	c.ShiftXMM, c.ShiftYMM = 0, 0
}

// Shift is the offset handed to the print adapter.
func (c *Calibration) Shift() printadapter.Shift {
	return printadapter.Shift{XMM: c.ShiftXMM, YMM: c.ShiftYMM}
}

// Describe renders the offset the way the nudge screen shows it.
func (c *Calibration) Describe() (x, y string) {
	return FormatAxis(c.ShiftXMM, "Left", "Right"), FormatAxis(c.ShiftYMM, "Up", "Down")
}

// FormatAxis rounds to 0.1 mm and names the direction, e.g. "Left: 0.5 mm".
func FormatAxis(valueMM float64, negative, positive string) string {
	r := round(valueMM, 1)
	switch {
	case r < 0:
		return fmt.Sprintf("%s: %.1f mm", negative, -r)
	case r > 0:
		return fmt.Sprintf("%s: %.1f mm", positive, r)
	}
	return "0.0 mm"
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

// ParseCopies keeps the digits of s (at most four), clamped to [1, 9999].
// Anything unparsable is one copy.
func ParseCopies(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' && digits.Len() < 4 {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil || n < 1 {
		return 1
	}
	if n > MaxCopies {
		return MaxCopies
	}
	return n
}
