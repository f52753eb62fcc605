// Command labelnudge prints label sheets with a stored printer offset applied.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/labelnudger/internal/calibration"
	"github.com/Lllllllleong/labelnudger/internal/docio"
	"github.com/Lllllllleong/labelnudger/internal/gcp"
	"github.com/Lllllllleong/labelnudger/internal/printadapter"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "labelnudge",
	Short: "Shift label sheets so they line up on your printer",
	Long: `labelnudge moves the content of every page of a PDF label sheet by a
calibrated offset before printing, so that misaligned printers still hit
the labels.

Typical use:
  labelnudge sheet --out calibration.pdf   # print it, measure the error
  labelnudge nudge left                     # repeat until the targets line up
  labelnudge print stickers.pdf --copies 2`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if configPath == "" {
			p, err := calibration.DefaultPath()
			if err != nil {
				return err
			}
			configPath = p
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Calibration profile (default: <user config dir>/labelnudger/calibration.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(nudgeCmd)
	rootCmd.AddCommand(calibrationCmd)
	rootCmd.AddCommand(stickersCmd)
	rootCmd.AddCommand(sheetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadProfile() (*calibration.Calibration, error) {
	return calibration.Load(configPath)
}

// gcsOpener creates its storage client on first use so that local and HTTP
// printing never need Google credentials.
type gcsOpener struct {
	once   sync.Once
	opener gcp.GCSOpener
	err    error
}

func (o *gcsOpener) Open(ctx context.Context, locator string) (printadapter.File, error) {
	o.once.Do(func() {
		client, err := storage.NewClient(ctx)
		if err != nil {
			o.err = fmt.Errorf("failed to create storage client: %w", err)
			return
		}
		o.opener = gcp.GCSOpener{Client: client}
	})
	if o.err != nil {
		return nil, o.err
	}
	return o.opener.Open(ctx, locator)
}

func newOpener() printadapter.Opener {
	return docio.NewMux(&gcsOpener{})
}
