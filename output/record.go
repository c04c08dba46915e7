package output

import (
	"fmt"

	"go-midiparse/midi"
)

// Record is the serialized form of a message. Only fields meaningful for
// Type are present. The json tags drive both JSON and CBOR field names.
type Record struct {
	Type       string  `json:"type"`
	Channel    *uint8  `json:"channel,omitempty"`
	Key        *uint8  `json:"key,omitempty"`
	Velocity   *uint8  `json:"velocity,omitempty"`
	Controller *uint8  `json:"controller,omitempty"`
	Value      *uint8  `json:"value,omitempty"`
	Program    *uint8  `json:"program,omitempty"`
	Pressure   *uint8  `json:"pressure,omitempty"`
	Bend       *int16  `json:"bend,omitempty"`
	Song       *uint8  `json:"song,omitempty"`
	Position   *uint16 `json:"position,omitempty"`
	Frame      *uint8  `json:"frame,omitempty"`
	Data       string  `json:"data,omitempty"`
	Raw        string  `json:"raw"`
}

func NewRecord(msg midi.Message) Record {
	r := Record{
		Type: msg.Type.String(),
		Raw:  fmt.Sprintf("% X", msg.Bytes()),
	}
	if msg.Type.Category() == midi.CategoryChannel {
		r.Channel = ptr(msg.Channel)
	}

	switch msg.Type {
	case midi.TypeNoteOn, midi.TypeNoteOff:
		r.Key, r.Velocity = ptr(msg.Key), ptr(msg.Velocity)
	case midi.TypePolyAfterTouch:
		r.Key, r.Pressure = ptr(msg.Key), ptr(msg.Pressure)
	case midi.TypeControlChange:
		r.Controller, r.Value = ptr(msg.Controller), ptr(msg.Value)
	case midi.TypeProgramChange:
		r.Program = ptr(msg.Program)
	case midi.TypeAfterTouch:
		r.Pressure = ptr(msg.Pressure)
	case midi.TypePitchBend:
		r.Bend = ptr(msg.Bend)
	case midi.TypeSongSelect:
		r.Song = ptr(msg.Song)
	case midi.TypeSongPosition:
		r.Position = ptr(msg.SongPosition)
	case midi.TypeQuarterFrame:
		r.Frame = ptr(msg.QuarterFrame)
	case midi.TypeSysEx:
		r.Data = fmt.Sprintf("% X", msg.Data)
	}
	return r
}

func ptr[T any](v T) *T {
	return &v
}
