package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Lllllllleong/labelnudger/internal/calibration"
	"github.com/spf13/cobra"
)

var nudgeStep float64

// nudgeCmd adjusts the stored offset one step at a time
var nudgeCmd = &cobra.Command{
	Use:       "nudge up|down|left|right|reset",
	Short:     "Move printed content one step and save the offset",
	ValidArgs: []string{"up", "down", "left", "right", "reset"},
	Args:      cobra.ExactArgs(1),
	RunE:      runNudge,
}

var calibrationCmd = &cobra.Command{
	Use:   "calibration",
	Short: "Inspect the calibration profile",
}

var calibrationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored offset, step and copies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s\n", configPath)
		showProfile(cmd.OutOrStdout(), profile)
		return nil
	},
}

func init() {
	nudgeCmd.Flags().Float64Var(&nudgeStep, "step", 0, "Step in mm, saved to the profile when set")
	calibrationCmd.AddCommand(calibrationShowCmd)
}

func runNudge(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("step") {
		if nudgeStep <= 0 {
			return fmt.Errorf("--step must be positive")
		}
		profile.StepMM = nudgeStep
	}

	if strings.EqualFold(args[0], "reset") {
		profile.Reset()
	} else {
		d, err := calibration.ParseDirection(args[0])
		if err != nil {
			return err
		}
		profile.Nudge(d)
	}

	if err := profile.Save(configPath); err != nil {
		return err
	}
	showProfile(cmd.OutOrStdout(), profile)
	return nil
}

func showProfile(w io.Writer, c *calibration.Calibration) {
	x, y := c.Describe()
	fmt.Fprintf(w, "Horizontal: %s\nVertical:   %s\nStep:       %.2f mm\nCopies:     %d\n", x, y, c.StepMM, c.Copies)
}
