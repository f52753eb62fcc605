package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/Lllllllleong/labelnudger/internal/catalog"
	"github.com/Lllllllleong/labelnudger/internal/gcp"
	"github.com/Lllllllleong/labelnudger/internal/models"
	"github.com/spf13/cobra"
)

var (
	stickerCatalog   string
	stickerDir       string
	stickerPullAll   bool
	stickerPrintOpts printFlags
)

// stickersCmd is the parent command for the sticker catalog
var stickersCmd = &cobra.Command{
	Use:   "stickers",
	Short: "Browse and fetch sheets from the sticker catalog",
	Long: `Works with the published sticker catalog, or with the Firestore registry
filled by the sticker ingest function when --catalog is
firestore://<project>/<collection>.

Available subcommands:
  list  - Show every sheet in the catalog
  pull  - Download one sheet, or all of them with --all
  print - Write a print-ready copy of a catalog sheet`,
}

var stickersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every sheet in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runStickersList,
}

var stickersPullCmd = &cobra.Command{
	Use:   "pull [name]",
	Short: "Download sheets into the local cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStickersPull,
}

var stickersPrintCmd = &cobra.Command{
	Use:   "print <name>",
	Short: "Write a print-ready copy of a catalog sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runStickersPrint,
}

func init() {
	stickersCmd.PersistentFlags().StringVar(&stickerCatalog, "catalog", "", "Catalog index URL or firestore://<project>/<collection> (default: profile, then the published index)")
	stickersCmd.PersistentFlags().StringVar(&stickerDir, "dir", "", "Sticker cache directory (default: <user cache dir>/labelnudger/stickers)")
	stickersPullCmd.Flags().BoolVar(&stickerPullAll, "all", false, "Download every sheet")
	addPrintFlags(stickersPrintCmd, &stickerPrintOpts)

	stickersCmd.AddCommand(stickersListCmd)
	stickersCmd.AddCommand(stickersPullCmd)
	stickersCmd.AddCommand(stickersPrintCmd)
}

// openCatalog selects the catalog from --catalog, then the profile. The
// returned close func releases any client it created.
func openCatalog(ctx context.Context) (catalog.Catalog, func() error, error) {
	locator := stickerCatalog
	if locator == "" {
		profile, err := loadProfile()
		if err != nil {
			return nil, nil, err
		}
		locator = profile.CatalogURL
	}

	if !strings.HasPrefix(locator, catalog.FirestoreScheme) {
		return catalog.NewHTTPCatalog(locator), func() error { return nil }, nil
	}
	project, collection, err := catalog.ParseFirestoreLocator(locator)
	if err != nil {
		return nil, nil, err
	}
	client, err := gcp.NewFirestoreClient(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("Using Firestore sticker catalog.", "project", project, "collection", collection)
	return catalog.NewFirestoreCatalog(client, collection), client.Close, nil
}

func listStickers(ctx context.Context) ([]models.Sticker, error) {
	c, closeCatalog, err := openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer closeCatalog()
	return c.List(ctx)
}

func findSticker(ctx context.Context, name string) (models.Sticker, error) {
	stickers, err := listStickers(ctx)
	if err != nil {
		return models.Sticker{}, err
	}
	s, ok := catalog.Find(stickers, name)
	if !ok {
		return models.Sticker{}, fmt.Errorf("no sticker named %q in the catalog", name)
	}
	return s, nil
}

func cacheDir() (string, error) {
	if stickerDir != "" {
		return stickerDir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache dir: %w", err)
	}
	return filepath.Join(dir, "labelnudger", "stickers"), nil
}

func runStickersList(cmd *cobra.Command, args []string) error {
	stickers, err := listStickers(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFILE\tURL")
	for _, s := range stickers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, catalog.FileName(s.Name), s.URL)
	}
	return w.Flush()
}

func runStickersPull(cmd *cobra.Command, args []string) error {
	if stickerPullAll == (len(args) == 1) {
		return fmt.Errorf("give either a sticker name or --all")
	}
	dir, err := cacheDir()
	if err != nil {
		return err
	}
	d := catalog.NewDownloader(dir)

	if !stickerPullAll {
		s, err := findSticker(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		path, err := d.Download(cmd.Context(), s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}

	stickers, err := listStickers(cmd.Context())
	if err != nil {
		return err
	}
	paths, err := d.DownloadAll(cmd.Context(), stickers)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func runStickersPrint(cmd *cobra.Command, args []string) error {
	s, err := findSticker(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return runPrint(cmd, s.URL, &stickerPrintOpts)
}
