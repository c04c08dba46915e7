// Package capture opens MIDI byte captures for the parser: raw or hex text,
// optionally compressed with gzip, zstd or lz4.
package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format is the textual encoding of a capture.
type Format uint8

const (
	FormatRaw Format = iota // bytes as they came off the wire
	FormatHex               // whitespace separated hex pairs
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatHex:
		return "hex"
	default:
		return fmt.Sprintf("format(%d)", f)
	}
}

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "raw", "bin", "":
		return FormatRaw, nil
	case "hex":
		return FormatHex, nil
	default:
		return 0, fmt.Errorf("unknown capture format: %q", name)
	}
}

// Compression identifies the container a capture is wrapped in.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", c)
	}
}

// CompressionFor picks the compression from a file extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	}
	return CompressionNone
}

// Open opens path for reading, decompressing by extension. "-" reads stdin.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := Decompress(f, CompressionFor(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &stack{ReadCloser: rc, under: f}, nil
}

// Decompress wraps r in a streaming decoder for c.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil

	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, nil

	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return dec.IOReadCloser(), nil

	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil

	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

// NewReader decodes f on top of r. Raw captures pass through untouched.
func NewReader(r io.Reader, f Format) io.Reader {
	if f == FormatHex {
		return NewHexReader(r)
	}
	return r
}

// stack closes the decoder then the file beneath it.
type stack struct {
	io.ReadCloser
	under io.Closer
}

func (s *stack) Close() error {
	err := s.ReadCloser.Close()
	if cerr := s.under.Close(); err == nil {
		err = cerr
	}
	return err
}
