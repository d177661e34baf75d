package export

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonlSink writes one JSON object per line. It always receives the
// machine-layout projection so lines sort chronologically as text.
type jsonlSink struct {
	f   *os.File
	enc *json.Encoder
}

func openJSONL(path string) (*jsonlSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", path, err)
	}
	return &jsonlSink{f: f, enc: json.NewEncoder(f)}, nil
}

func (s *jsonlSink) write(r Record) error {
	return s.enc.Encode(r)
}

func (s *jsonlSink) close() error {
	return s.f.Close()
}
