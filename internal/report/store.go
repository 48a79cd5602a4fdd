package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/extract"
	"github.com/nao1215/harvey/internal/model"
)

const (
	// artifactTimeLayout stamps artifact file names.
	artifactTimeLayout = "20060102_150405"

	// maxCollisions bounds the _N suffix search.
	maxCollisions = 1000
)

// ErrTooManyArtifacts is returned when every candidate name for an
// artifact is taken.
var ErrTooManyArtifacts = errors.New("too many report artifacts with the same name")

// Store writes report artifacts into a directory. Existing files are never
// overwritten: a name collision gets a numeric suffix.
type Store struct {
	dir     string
	version string
	now     func() time.Time
}

// NewStore creates a Store rooted at dir. version is embedded in formats
// that carry metadata.
func NewStore(dir, version string) *Store {
	return &Store{dir: dir, version: version, now: time.Now}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// ArtifactName returns the file name for a report on target generated at t:
// "<slug>_<YYYYMMDD_HHMMSS>.<ext>".
func ArtifactName(target string, t time.Time, ext string) string {
	slug := extract.Slug(target)
	if slug == "" {
		slug = "unknown"
	}
	return slug + "_" + t.Format(artifactTimeLayout) + "." + ext
}

// Save renders inv in format into a new artifact and returns its path. A
// failed render leaves no file behind.
func (s *Store) Save(inv *model.Investigation, format string) (string, error) {
	if !config.ValidFormat(format) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	f, path, err := s.create(inv.Target, Extension(format))
	if err != nil {
		return "", err
	}

	var werr error
	if w, err := NewWriter(format, f, s.version); err != nil {
		werr = err
	} else {
		_, werr = w.Write(inv)
	}
	cerr := f.Close()

	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(path) //nolint:errcheck // best effort
		return "", fmt.Errorf("failed to write report artifact: %w", err)
	}
	return path, nil
}

// create opens a fresh artifact file exclusively.
func (s *Store) create(target, ext string) (*os.File, string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := ArtifactName(target, s.now(), ext)
	base := name[:len(name)-len(ext)-1]

	for i := 0; i < maxCollisions; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d.%s", base, i, ext)
		}
		path := filepath.Join(s.dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // path is built from a slug
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("failed to create report artifact: %w", err)
		}
	}
	return nil, "", ErrTooManyArtifacts
}
