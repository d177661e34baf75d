package internal

import (
	"io"

	"github.com/mlindqvist/tracefan/internal/decoder"
	"github.com/mlindqvist/tracefan/internal/snapshot"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	decoder decoder.Decoder
	mounter snapshot.Mounter
	stdout  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithDecoder sets the trace-file decoder. Defaults to the JSON replay
// decoder when unset.
func WithDecoder(d decoder.Decoder) Option {
	return func(a *application) {
		a.decoder = d
	}
}

// WithMounter sets the snapshot mounter. Defaults to enumerating the
// pre-mounted roots from the configuration.
func WithMounter(m snapshot.Mounter) Option {
	return func(a *application) {
		a.mounter = m
	}
}

// WithStdout redirects console narration, mainly for tests.
func WithStdout(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}
