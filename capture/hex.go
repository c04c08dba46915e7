package capture

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrBadHex is wrapped by every hex decoding failure.
var ErrBadHex = errors.New("capture: bad hex")

// HexReader turns a hex dump into bytes. Fields are separated by whitespace
// or commas, may carry a 0x prefix and may hold several pairs ("903C64").
// A # starts a comment running to the end of the line.
type HexReader struct {
	scan    *bufio.Scanner
	line    int
	pending []byte
	err     error
}

func NewHexReader(r io.Reader) *HexReader {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &HexReader{scan: scan}
}

func (h *HexReader) Read(p []byte) (int, error) {
	for len(h.pending) == 0 {
		if h.err != nil {
			return 0, h.err
		}
		h.fill()
	}
	n := copy(p, h.pending)
	h.pending = h.pending[n:]
	return n, nil
}

// fill decodes the next line into pending, or sets err.
func (h *HexReader) fill() {
	if !h.scan.Scan() {
		h.err = h.scan.Err()
		if h.err == nil {
			h.err = io.EOF
		}
		return
	}
	h.line++

	line, _, _ := strings.Cut(h.scan.Text(), "#")
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r'
	})
	for _, field := range fields {
		digits := field
		if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
			digits = digits[2:]
		}
		b, err := hex.DecodeString(digits)
		if err != nil || len(b) == 0 {
			h.err = fmt.Errorf("%w: line %d: %q", ErrBadHex, h.line, field)
			return
		}
		h.pending = append(h.pending, b...)
	}
}
