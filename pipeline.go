package t1gars

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mistgc/t1gars/catalog"
	"github.com/mistgc/t1gars/tga"
)

// Ignore any file greater than 64 MB; no valid TGA gets close.
const maxFileSize = 64 << 20

func (t *T1gars) findDirectories(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(dir string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a directory
			if !info.Mode().IsDir() {
				return nil
			}

			select {
			case out <- dir:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// scanFile decodes one TGA file and records it in both the catalog
// database and the per-directory index. Malformed files are logged and
// skipped rather than aborting the scan.
func (t *T1gars) scanFile(file string, idx *catalog.DB) error {
	m, err := tga.ReadFile(file)
	if err != nil {
		t.logger.Printf("skipping \"%s\": %v\n", file, err)
		return nil
	}
	defer m.Release()

	img, err := m.Image()
	if err != nil {
		t.logger.Printf("skipping \"%s\": %v\n", file, err)
		return nil
	}

	digest, err := digestFile(file)
	if err != nil {
		return err
	}

	var preview bytes.Buffer
	if err := png.Encode(&preview, img); err != nil {
		return err
	}

	format, err := m.Header.PixelFormat()
	if err != nil {
		return err
	}

	if _, err := t.db.AddImage(digestString(digest), file, int(m.Header.Width), int(m.Header.Height), format.String(), preview.Bytes()); err != nil {
		return err
	}

	return idx.Set(digest, catalog.Entry{
		Width:  m.Header.Width,
		Height: m.Header.Height,
		Depth:  m.Header.PixelDepth,
		Type:   uint8(m.Header.Type),
	})
}

func (t *T1gars) directoryWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for dir := range in {
			idx := catalog.New()
			if err := filepath.Walk(dir, func(file string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
				if info.Name()[0] == '.' {
					if info.Mode().IsDir() {
						return filepath.SkipDir
					}
					return nil
				}

				// Ignore anything that isn't a normal file
				if !info.Mode().IsRegular() {
					return nil
				}

				if info.Size() > maxFileSize {
					return nil
				}

				if strings.ToLower(filepath.Ext(file)) != ".tga" {
					return nil
				}

				// Only files in the "top" directory; subdirectories get their own worker pass
				if filepath.Dir(file) != dir {
					return nil
				}

				return t.scanFile(file, idx)
			}); err != nil {
				errc <- err
				return
			}

			if idx.Length() > 0 {
				b, err := idx.MarshalBinary()
				if err != nil {
					errc <- err
					return
				}

				if err := os.WriteFile(filepath.Join(dir, catalog.Filename), b, 0o644); err != nil {
					errc <- err
					return
				}
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path recursively, cataloging every TGA file found and
// writing an index sidecar to each directory that contains any.
func (t *T1gars) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	dirs, errc, err := t.findDirectories(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < 10; i++ {
		errc, err := t.directoryWorker(ctx, dirs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
