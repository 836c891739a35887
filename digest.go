package t1gars

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// digestFile returns the xxhash of the file contents.
func digestFile(file string) (uint64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err = io.Copy(h, f); err != nil {
		return 0, err
	}

	return h.Sum64(), nil
}

// digestString renders a digest as fixed-width upper-case hex, the form
// stored in the catalog database.
func digestString(digest uint64) string {
	return fmt.Sprintf("%016X", digest)
}
