/*
Package catalog implements the small binary index written to each scanned
directory that contains TGA files. It records, per file digest, the decoded
geometry so a rescan can skip unchanged files without reparsing them.
*/
package catalog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

const (
	// Filename is the expected filename used when writing to disk
	Filename = ".t1gars.idx"

	maxEntries = 1024

	// noDigest and noIndex pad the fixed-size tables.
	noDigest = ^uint64(0)
	noIndex  = ^uint16(0)
)

// Entry records the decoded geometry of one TGA file.
type Entry struct {
	Width  uint16
	Height uint16
	Depth  uint8 // bits per pixel
	Type   uint8 // raw header image type code
}

// DB is the index object. It implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces.
type DB struct {
	digests map[uint64]uint16
	entries []Entry
}

// New returns an empty index
func New() *DB {
	return &DB{
		digests: make(map[uint64]uint16),
	}
}

// Length returns the number of digests in the index
func (db *DB) Length() int {
	return len(db.digests)
}

// Set stores the entry for the given digest
func (db *DB) Set(digest uint64, e Entry) error {
	if _, ok := db.digests[digest]; ok {
		return nil
	}
	if len(db.digests) >= maxEntries {
		return fmt.Errorf("more than %d entries", maxEntries)
	}
	db.entries = append(db.entries, e)
	db.digests[digest] = uint16(len(db.entries) - 1)
	return nil
}

// Get returns the entry stored for the given digest
func (db *DB) Get(digest uint64) (Entry, bool) {
	i, ok := db.digests[digest]
	if !ok {
		return Entry{}, false
	}
	return db.entries[i], true
}

// MarshalBinary encodes the index into binary form and returns the result
func (db *DB) MarshalBinary() ([]byte, error) {
	length := len(db.digests)

	if length > maxEntries {
		return nil, fmt.Errorf("more than %d entries", maxEntries)
	}

	keys := make([]uint64, 0, len(db.digests))
	for k := range db.digests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	b := new(bytes.Buffer)

	// Write out digest values
	if err := binary.Write(b, binary.LittleEndian, &keys); err != nil {
		return nil, err
	}
	// Pad the digest table with 0xff's
	if _, err := b.Write(bytes.Repeat([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, maxEntries-length)); err != nil {
		return nil, err
	}

	// Write out entry indices
	for _, k := range keys {
		v := db.digests[k]
		if err := binary.Write(b, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
	}
	// Pad the index table with 0xff's
	if _, err := b.Write(bytes.Repeat([]byte{0xff, 0xff}, maxEntries-length)); err != nil {
		return nil, err
	}

	// Write out entries
	for _, e := range db.entries {
		if err := binary.Write(b, binary.LittleEndian, &e); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the index from binary form
func (db *DB) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)

	db.digests = make(map[uint64]uint16)
	db.entries = nil

	var keys []uint64
	for i := 0; i < maxEntries; i++ {
		var digest uint64
		if err := binary.Read(r, binary.LittleEndian, &digest); err != nil {
			return err
		}
		if digest != noDigest {
			keys = append(keys, digest)
		}
	}

	var maxOffset int
	for i := 0; i < maxEntries; i++ {
		var offset uint16
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return err
		}
		if offset != noIndex && i < len(keys) {
			db.digests[keys[i]] = offset
			if int(offset) > maxOffset {
				maxOffset = int(offset)
			}
		}
	}

	for i := 0; i <= maxOffset && len(keys) > 0; i++ {
		var e Entry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errors.New("insufficient data")
			}
			return err
		}
		db.entries = append(db.entries, e)
	}

	return nil
}
