// Package decoder defines the capability interface the pipeline uses to
// turn raw trace files into normalized artifacts. Any implementation
// satisfying Decoder is substitutable, which keeps the pipeline testable
// without real binary fixtures.
package decoder

import (
	"errors"
	"io"

	"github.com/mlindqvist/tracefan/internal/models"
)

// ErrUnsupportedVersion reports an artifact that is structurally valid
// but uses a format version this decoder does not understand. The batch
// processor surfaces it distinctly so operators know the file is not
// corrupt, just newer than the decoder.
var ErrUnsupportedVersion = errors.New("decoder: unsupported format version")

// ErrCorrupt reports data that could not be recognized as a trace file.
var ErrCorrupt = errors.New("decoder: corrupt or unrecognized data")

// Decoder opens one candidate and returns its normalized artifact.
type Decoder interface {
	// OpenPath decodes the file at path.
	OpenPath(path string) (*models.Artifact, error)
	// OpenStream decodes an in-memory payload. The label is used as the
	// artifact's source path (alternate streams have no path of their own).
	OpenStream(r io.Reader, label string) (*models.Artifact, error)
}
