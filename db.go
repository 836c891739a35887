package t1gars

import (
	"database/sql"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

type CatalogDB struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func OpenCatalogDB(file string) (*CatalogDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, digest TEXT NOT NULL UNIQUE, path TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, format TEXT NOT NULL, preview BLOB)"); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}

	return &CatalogDB{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

func (db *CatalogDB) Close() error {
	db.dec.Close()
	db.enc.Close()
	return db.db.Close()
}

// AddImage records one decoded TGA file, deduplicating on digest. The
// preview, if any, is stored zstd-compressed.
func (db *CatalogDB) AddImage(digest, path string, width, height int, format string, preview []byte) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM image WHERE digest = ?", digest).Scan(&id); err {
	case sql.ErrNoRows:
		var blob []byte
		if preview != nil {
			blob = db.enc.EncodeAll(preview, nil)
		}
		result, err := db.db.Exec("INSERT INTO image (digest, path, width, height, format, preview) VALUES (?, ?, ?, ?, ?, ?)", digest, path, width, height, format, blob)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// FindPreviewByDigest returns the decompressed preview for a digest, or
// nil if the digest is unknown or was stored without one.
func (db *CatalogDB) FindPreviewByDigest(digest string) ([]byte, error) {
	var blob []byte
	switch err := db.db.QueryRow("SELECT preview FROM image WHERE digest = ?", digest).Scan(&blob); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		if blob == nil {
			return nil, nil
		}
		return db.dec.DecodeAll(blob, nil)
	default:
		return nil, err
	}
}
