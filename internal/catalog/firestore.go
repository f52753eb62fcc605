package catalog

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/labelnudger/internal/models"
	"google.golang.org/api/iterator"
)

// FirestoreCatalog keeps the sticker index in a Firestore collection, one
// document per sheet keyed by its content hash.
type FirestoreCatalog struct {
	client     *firestore.Client
	collection string
}

// FirestoreScheme prefixes catalog locators of the form
// firestore://<project>/<collection>.
const FirestoreScheme = "firestore://"

// ParseFirestoreLocator splits a firestore:// catalog locator into its
// project and collection.
func ParseFirestoreLocator(locator string) (project, collection string, err error) {
	rest, ok := strings.CutPrefix(locator, FirestoreScheme)
	if !ok {
		return "", "", fmt.Errorf("not a firestore locator: %q", locator)
	}
	project, collection, _ = strings.Cut(rest, "/")
	collection = strings.Trim(collection, "/")
	if project == "" || collection == "" || strings.Contains(collection, "/") {
		return "", "", fmt.Errorf("invalid firestore locator %q, want %s<project>/<collection>", locator, FirestoreScheme)
	}
	return project, collection, nil
}

func NewFirestoreCatalog(client *firestore.Client, collection string) *FirestoreCatalog {
	return &FirestoreCatalog{client: client, collection: collection}
}

func (c *FirestoreCatalog) List(ctx context.Context) ([]models.Sticker, error) {
	it := c.client.Collection(c.collection).OrderBy("name", firestore.Asc).Documents(ctx)
	defer it.Stop()

	var out []models.Sticker
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list stickers: %w", err)
		}
		var s models.Sticker
		if err := doc.DataTo(&s); err != nil {
			return nil, fmt.Errorf("failed to decode sticker %s: %w", doc.Ref.ID, err)
		}
		if s.Name == "" || s.URL == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// FindByHash reports whether a sheet with this content hash is registered,
// returning its name.
func (c *FirestoreCatalog) FindByHash(ctx context.Context, fileHash string) (string, bool, error) {
	docs, err := c.client.Collection(c.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return "", false, fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) == 0 {
		return "", false, nil
	}
	var s models.Sticker
	if err := docs[0].DataTo(&s); err != nil {
		return docs[0].Ref.ID, true, nil
	}
	return s.Name, true, nil
}

// Register adds or replaces a sticker.
func (c *FirestoreCatalog) Register(ctx context.Context, s models.Sticker) error {
	if s.FileHash == "" {
		return fmt.Errorf("sticker %q has no file hash", s.Name)
	}
	if _, err := c.client.Collection(c.collection).Doc(s.FileHash).Set(ctx, s); err != nil {
		return fmt.Errorf("failed to register sticker %q: %w", s.Name, err)
	}
	return nil
}
