// Package compress provides streaming codecs for backup artifacts.
package compress

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec wraps an artifact sink with streaming compression. Closing the
// returned writer flushes the codec without closing the underlying sink.
type Codec interface {
	// Name is the configuration value selecting this codec.
	Name() string
	// Extension is appended to the artifact filename, e.g. ".gz".
	Extension() string
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

var codecs = map[string]Codec{
	"none": noneCodec{},
	"gzip": gzipCodec{},
	"zstd": zstdCodec{},
	"lz4":  lz4Codec{},
}

// ForName returns the codec registered under name.
func ForName(name string) (Codec, error) {
	codec, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown compression codec: %s", name)
	}
	return codec, nil
}

// noneCodec passes bytes through untouched.
type noneCodec struct{}

func (noneCodec) Name() string      { return "none" }
func (noneCodec) Extension() string { return "" }

func (noneCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type gzipCodec struct{}

func (gzipCodec) Name() string      { return "gzip" }
func (gzipCodec) Extension() string { return ".gz" }

func (gzipCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

type zstdCodec struct{}

func (zstdCodec) Name() string      { return "zstd" }
func (zstdCodec) Extension() string { return ".zst" }

func (zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	return encoder, nil
}

type lz4Codec struct{}

func (lz4Codec) Name() string      { return "lz4" }
func (lz4Codec) Extension() string { return ".lz4" }

func (lz4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}
