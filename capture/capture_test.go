package capture

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var sample = []byte{0x90, 0x3C, 0x64, 0xF8, 0x3E, 0x64, 0xF0, 0x7D, 0x01, 0xF7}

func compress(t *testing.T, c Compression, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch c {
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionZstd:
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		w = enc
	case CompressionLZ4:
		w = lz4.NewWriter(&buf)
	default:
		return data
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenByExtension(t *testing.T) {
	dir := t.TempDir()
	for name, c := range map[string]Compression{
		"take.mid":  CompressionNone,
		"take.gz":   CompressionGzip,
		"take.zst":  CompressionZstd,
		"take.lz4":  CompressionLZ4,
		"take.ZSTD": CompressionZstd,
	} {
		if got := CompressionFor(name); got != c {
			t.Fatalf("%s: got %s want %s", name, got, c)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, compress(t, c, sample), 0644); err != nil {
			t.Fatal(err)
		}

		rc, err := Open(path)
		if err != nil {
			t.Fatalf("%s: open: %v", name, err)
		}
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if err := rc.Close(); err != nil {
			t.Fatalf("%s: close: %v", name, err)
		}
		if !bytes.Equal(got, sample) {
			t.Fatalf("%s: got % X want % X", name, got, sample)
		}
	}
}

func TestOpenCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected error for corrupt gzip")
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"raw": FormatRaw, "HEX": FormatHex, "": FormatRaw} {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Fatalf("%q: got %v, %v", name, got, err)
		}
	}
	if _, err := ParseFormat("smf"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestHexReader(t *testing.T) {
	src := "# note on, clock\n0x90 3C,64\n\tF8 3e64 # running status\n\nF0 7D 01 F7\n"
	got, err := io.ReadAll(NewReader(bytes.NewBufferString(src), FormatHex))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, sample) {
		t.Fatalf("got % X want % X", got, sample)
	}
}

func TestHexReaderSmallReads(t *testing.T) {
	r := NewHexReader(bytes.NewBufferString("90 3C 64\nF8\n"))
	var out []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(out, []byte{0x90, 0x3C, 0x64, 0xF8}) {
		t.Fatalf("got % X", out)
	}
}

func TestHexReaderBadInput(t *testing.T) {
	for _, src := range []string{"90 3\n", "zz\n", "0x\n"} {
		_, err := io.ReadAll(NewHexReader(bytes.NewBufferString(src)))
		if !errors.Is(err, ErrBadHex) {
			t.Errorf("%q: expected ErrBadHex, got %v", src, err)
		}
	}
}
