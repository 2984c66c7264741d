package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"media-scribe/internal/domain"
)

// importPrefix marks in-flight copies inside the scratch dir.
const importPrefix = ".import-"

// CopyError reports a pick whose scratch copy could not be made.
type CopyError struct {
	Source      string
	Destination string
	Err         error
}

// Error formats the failed copy for logs.
func (e *CopyError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("copy %s to %s: %v", e.Source, e.Destination, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *CopyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Scratch copies picked files into a private directory so they stay
// readable after the chooser session ends.
type Scratch struct {
	dir        string
	mkdirAll   func(path string, perm os.FileMode) error
	open       func(name string) (*os.File, error)
	createTemp func(dir, pattern string) (*os.File, error)
	rename     func(oldpath, newpath string) error
	remove     func(name string) error
}

// NewScratch creates a scratch store rooted at dir.
func NewScratch(dir string) *Scratch {
	return &Scratch{
		dir:        dir,
		mkdirAll:   os.MkdirAll,
		open:       os.Open,
		createTemp: os.CreateTemp,
		rename:     os.Rename,
		remove:     os.Remove,
	}
}

// Import copies source into the scratch dir under its base name, replacing
// any earlier copy with that name.
func (s *Scratch) Import(source string) (domain.MediaReference, error) {
	name := filepath.Base(strings.TrimSpace(source))
	dest := filepath.Join(s.dir, name)
	fail := func(err error) (domain.MediaReference, error) {
		return domain.MediaReference{}, &CopyError{Source: source, Destination: dest, Err: err}
	}

	if name == "." || name == string(filepath.Separator) {
		return fail(fmt.Errorf("source has no file name"))
	}
	if err := s.mkdirAll(s.dir, 0o700); err != nil {
		return fail(err)
	}

	src, err := s.open(source)
	if err != nil {
		return fail(err)
	}
	defer src.Close()

	// Staging through a temp file keeps a re-pick of dest itself intact.
	tmp, err := s.createTemp(s.dir, importPrefix+"*")
	if err != nil {
		return fail(err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = s.remove(tmpPath)
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.remove(tmpPath)
		return fail(err)
	}
	if err := s.rename(tmpPath, dest); err != nil {
		_ = s.remove(tmpPath)
		return fail(err)
	}

	return domain.NewMediaReference(dest), nil
}
