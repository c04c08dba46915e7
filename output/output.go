// Package output writes decoded messages as styled text, JSON lines or a
// CBOR sequence.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"go-midiparse/midi"
	"go-midiparse/theme"
)

// Encoder writes messages to an underlying stream.
type Encoder interface {
	Encode(msg midi.Message) error
	Flush() error
}

// encMode uses Core Deterministic Encoding: the same message always
// produces the same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("output: CBOR encoder initialization failed: " + err.Error())
	}
}

// New returns an encoder for format: text, json or cbor. th styles text
// output and may be nil for the default theme.
func New(format string, w io.Writer, th *theme.Theme) (Encoder, error) {
	bw := bufio.NewWriter(w)
	switch strings.ToLower(format) {
	case "text", "":
		if th == nil {
			th = theme.New(nil)
		}
		return &textEncoder{w: bw, theme: th}, nil
	case "json":
		return &jsonEncoder{w: bw, enc: json.NewEncoder(bw)}, nil
	case "cbor":
		return &cborEncoder{w: bw, enc: encMode.NewEncoder(bw)}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}

type textEncoder struct {
	w     *bufio.Writer
	theme *theme.Theme
	n     int
}

func (e *textEncoder) Encode(msg midi.Message) error {
	_, err := fmt.Fprintf(e.w, "%s %s %s\n",
		e.theme.Dim(fmt.Sprintf("%6d", e.n)),
		e.theme.Label(msg.Type),
		msg.String())
	e.n++
	return err
}

func (e *textEncoder) Flush() error { return e.w.Flush() }

type jsonEncoder struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func (e *jsonEncoder) Encode(msg midi.Message) error {
	return e.enc.Encode(NewRecord(msg))
}

func (e *jsonEncoder) Flush() error { return e.w.Flush() }

type cborEncoder struct {
	w   *bufio.Writer
	enc *cbor.Encoder
}

func (e *cborEncoder) Encode(msg midi.Message) error {
	return e.enc.Encode(NewRecord(msg))
}

func (e *cborEncoder) Flush() error { return e.w.Flush() }
