/*
Package t1gars is a toolkit for working with Truevision TGA images: a
decoder and encoder for the format plus a catalog for indexing directories
of TGA files.
*/
package t1gars

import (
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
)

const previewCacheSize = 128

type T1gars struct {
	db       *CatalogDB
	logger   *log.Logger
	previews *lru.Cache[string, []byte]
}

func New(db string, logger *log.Logger) (*T1gars, error) {
	catalog, err := OpenCatalogDB(db)
	if err != nil {
		return nil, err
	}

	previews, err := lru.New[string, []byte](previewCacheSize)
	if err != nil {
		catalog.Close()
		return nil, err
	}

	return &T1gars{
		db:       catalog,
		logger:   logger,
		previews: previews,
	}, nil
}

func (t *T1gars) Close() error {
	return t.db.Close()
}

// Preview returns the stored PNG preview for a file digest, or nil if the
// digest is not in the catalog. Decompressed previews are cached.
func (t *T1gars) Preview(digest string) ([]byte, error) {
	if b, ok := t.previews.Get(digest); ok {
		return b, nil
	}

	b, err := t.db.FindPreviewByDigest(digest)
	if err != nil || b == nil {
		return nil, err
	}

	t.previews.Add(digest, b)
	return b, nil
}
