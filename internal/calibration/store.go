package calibration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lllllllleong/labelnudger/internal/printadapter"
	"gopkg.in/yaml.v3"
)

// DefaultPath is calibration.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "labelnudger", "calibration.yaml"), nil
}

// Load reads a calibration profile. A missing file yields the defaults.
func Load(path string) (*Calibration, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read calibration: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse calibration: %w", err)
	}
	if c.StepMM <= 0 {
		c.StepMM = DefaultStepMM
	}
	c.Copies = printadapter.NormalizeCopies(c.Copies)
	if c.Copies > MaxCopies {
		c.Copies = MaxCopies
	}
	return c, nil
}

// Save writes the profile, creating its directory.
func (c *Calibration) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal calibration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write calibration: %w", err)
	}
	return nil
}
