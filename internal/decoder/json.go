package decoder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mlindqvist/tracefan/internal/models"
)

// JSON decodes artifacts that have already been normalized to the JSON
// replay format (one object per file). It exists for replaying exported
// evidence and for exercising the pipeline without binary fixtures.
type JSON struct{}

// Verify JSON satisfies Decoder at compile time.
var _ Decoder = JSON{}

// jsonArtifact is the wire shape of the replay format.
type jsonArtifact struct {
	FormatVersion  int          `json:"format_version"`
	ExecutableName string       `json:"executable_name"`
	Hash           string       `json:"hash"`
	Size           int64        `json:"size"`
	Version        string       `json:"version"`
	RunCount       int          `json:"run_count"`
	RunTimes       []time.Time  `json:"run_times"`
	FilePaths      []string     `json:"file_paths"`
	Volumes        []jsonVolume `json:"volumes"`
	Partial        bool         `json:"partial"`
}

type jsonVolume struct {
	DeviceName   string    `json:"device_name"`
	Serial       string    `json:"serial"`
	Created      time.Time `json:"created"`
	Directories  []string  `json:"directories"`
	FileRefCount int       `json:"file_ref_count"`
}

// maxReplayVersion is the newest replay format this decoder understands.
const maxReplayVersion = 1

// OpenPath decodes the replay file at path.
func (JSON) OpenPath(path string) (*models.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoder: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("decoder: stat %s: %w", path, err)
	}

	art, err := decodeJSON(f, path)
	if err != nil {
		return nil, err
	}
	art.SourceCreated = info.ModTime()
	art.SourceModified = info.ModTime()
	art.SourceAccessed = info.ModTime()
	return art, nil
}

// OpenStream decodes an in-memory replay payload.
func (JSON) OpenStream(r io.Reader, label string) (*models.Artifact, error) {
	return decodeJSON(r, label)
}

func decodeJSON(r io.Reader, source string) (*models.Artifact, error) {
	var raw jsonArtifact
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, source, err)
	}
	if raw.FormatVersion > maxReplayVersion {
		return nil, fmt.Errorf("%w: %s is version %d", ErrUnsupportedVersion, source, raw.FormatVersion)
	}

	art := &models.Artifact{
		SourcePath:     source,
		ExecutableName: raw.ExecutableName,
		Hash:           raw.Hash,
		Size:           raw.Size,
		Version:        raw.Version,
		RunCount:       raw.RunCount,
		RunTimes:       raw.RunTimes,
		FilePaths:      raw.FilePaths,
		PartialDecode:  raw.Partial,
	}
	for _, v := range raw.Volumes {
		art.Volumes = append(art.Volumes, models.Volume{
			DeviceName:   v.DeviceName,
			Serial:       v.Serial,
			Created:      v.Created,
			Directories:  v.Directories,
			FileRefCount: v.FileRefCount,
		})
	}
	return art, nil
}
