package midi

import (
	"bytes"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Type identifies the kind of a decoded message.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeNoteOff
	TypeNoteOn
	TypePolyAfterTouch
	TypeControlChange
	TypeProgramChange
	TypeAfterTouch
	TypePitchBend
	TypeSysEx
	TypeQuarterFrame
	TypeSongPosition
	TypeSongSelect
	TypeTuneRequest
	TypeUndefined // 0xF4, 0xF5
	TypeTimingClock
	TypeTick
	TypeStart
	TypeContinue
	TypeStop
	TypeActiveSense
	TypeReset
	TypeUndefinedRealtime // 0xFD
)

var typeNames = [...]string{
	TypeUnknown:           "unknown",
	TypeNoteOff:           "note_off",
	TypeNoteOn:            "note_on",
	TypePolyAfterTouch:    "poly_aftertouch",
	TypeControlChange:     "control_change",
	TypeProgramChange:     "program_change",
	TypeAfterTouch:        "aftertouch",
	TypePitchBend:         "pitchwheel",
	TypeSysEx:             "sysex",
	TypeQuarterFrame:      "quarter_frame",
	TypeSongPosition:      "songpos",
	TypeSongSelect:        "song_select",
	TypeTuneRequest:       "tune_request",
	TypeUndefined:         "undefined",
	TypeTimingClock:       "clock",
	TypeTick:              "tick",
	TypeStart:             "start",
	TypeContinue:          "continue",
	TypeStop:              "stop",
	TypeActiveSense:       "active_sensing",
	TypeReset:             "reset",
	TypeUndefinedRealtime: "undefined_realtime",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Category groups message types for display and metrics.
type Category string

const (
	CategoryChannel  Category = "channel"
	CategorySysEx    Category = "sysex"
	CategoryCommon   Category = "common"
	CategoryRealtime Category = "realtime"
	CategoryUnknown  Category = "unknown"
)

func (t Type) Category() Category {
	switch {
	case t >= TypeNoteOff && t <= TypePitchBend:
		return CategoryChannel
	case t == TypeSysEx:
		return CategorySysEx
	case t >= TypeQuarterFrame && t <= TypeUndefined:
		return CategoryCommon
	case t >= TypeTimingClock && t <= TypeUndefinedRealtime:
		return CategoryRealtime
	}
	return CategoryUnknown
}

var realtimeTypes = map[byte]Type{
	TimingClock: TypeTimingClock,
	Tick:        TypeTick,
	Start:       TypeStart,
	Continue:    TypeContinue,
	Stop:        TypeStop,
	0xFD:        TypeUndefinedRealtime,
	ActiveSense: TypeActiveSense,
	Reset:       TypeReset,
}

// Message is a decoded MIDI message. Only the fields meaningful for Type are set.
type Message struct {
	Type    Type
	Channel uint8

	Key        uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Program    uint8
	Pressure   uint8
	Bend       int16 // -8192..8191, 0 is centre

	Song         uint8
	SongPosition uint16
	QuarterFrame uint8

	Data []byte // sysex payload without F0/F7

	Raw gomidi.Message
}

// Decoder maps one framed token to a Message.
type Decoder func(tok Token) (Message, error)

// Bytes returns the raw bytes of the message.
func (m Message) Bytes() []byte {
	return []byte(m.Raw)
}

func (m Message) String() string {
	return m.Raw.String()
}

// Decode turns a framed token into a Message. It rejects tokens that do not
// follow MIDI 1.0 framing.
func Decode(tok Token) (Message, error) {
	if len(tok) == 0 {
		return Message{}, fmt.Errorf("%w: empty token", ErrDecode)
	}
	status := tok[0]
	if !IsStatus(status) {
		return Message{}, fmt.Errorf("%w: leading byte 0x%02X is not a status byte", ErrDecode, status)
	}

	raw := gomidi.Message(bytes.Clone(tok))
	msg := Message{Raw: raw}

	if status == SysExStart {
		if len(raw) < 2 || raw[len(raw)-1] != SysExEnd {
			return Message{}, fmt.Errorf("%w: unterminated sysex", ErrDecode)
		}
		if err := checkData(raw[1 : len(raw)-1]); err != nil {
			return Message{}, err
		}
		msg.Type = TypeSysEx
		msg.Data = []byte{}
		// gomidi reports F0 F7 as not a sysex; its payload is empty anyway.
		if len(raw) > 2 && !raw.GetSysEx(&msg.Data) {
			return Message{}, rejected(raw)
		}
		msg.Data = msg.Data[:len(msg.Data):len(msg.Data)]
		return msg, nil
	}
	if status == SysExEnd {
		return Message{}, fmt.Errorf("%w: end of exclusive outside sysex", ErrDecode)
	}

	n, known := DataLength(status)
	if len(raw) != n+1 {
		return Message{}, fmt.Errorf("%w: status 0x%02X wants %d bytes, got %d", ErrDecode, status, n+1, len(raw))
	}
	if err := checkData(raw[1:]); err != nil {
		return Message{}, err
	}

	ok := true
	switch {
	case IsChannelVoice(status):
		ok = decodeChannel(&msg, status)
	case IsRealtime(status):
		msg.Type = realtimeTypes[status]
	case !known:
		msg.Type = TypeUndefined
	case status == QuarterFrame:
		msg.Type = TypeQuarterFrame
		ok = raw.GetMTC(&msg.QuarterFrame)
	case status == SongPosition:
		msg.Type = TypeSongPosition
		ok = raw.GetSPP(&msg.SongPosition)
	case status == SongSelect:
		msg.Type = TypeSongSelect
		ok = raw.GetSongSelect(&msg.Song)
	case status == TuneRequest:
		msg.Type = TypeTuneRequest
	}
	if !ok {
		return Message{}, rejected(raw)
	}
	return msg, nil
}

// decodeChannel reads the fields of an already framed channel voice message.
func decodeChannel(msg *Message, status byte) bool {
	raw := msg.Raw
	switch status & 0xF0 {
	case NoteOff, NoteOn:
		msg.Type = TypeNoteOn
		if status&0xF0 == NoteOff {
			msg.Type = TypeNoteOff
		}
		// A note-on with velocity 0 may be reported as a note-off.
		return raw.GetNoteOn(&msg.Channel, &msg.Key, &msg.Velocity) ||
			raw.GetNoteOff(&msg.Channel, &msg.Key, &msg.Velocity)
	case PolyAfterTouch:
		msg.Type = TypePolyAfterTouch
		return raw.GetPolyAfterTouch(&msg.Channel, &msg.Key, &msg.Pressure)
	case CC:
		msg.Type = TypeControlChange
		return raw.GetControlChange(&msg.Channel, &msg.Controller, &msg.Value)
	case ProgramChange:
		msg.Type = TypeProgramChange
		return raw.GetProgramChange(&msg.Channel, &msg.Program)
	case AfterTouch:
		msg.Type = TypeAfterTouch
		return raw.GetAfterTouch(&msg.Channel, &msg.Pressure)
	case PitchBend:
		msg.Type = TypePitchBend
		var abs uint16
		return raw.GetPitchBend(&msg.Channel, &msg.Bend, &abs)
	}
	return false
}

func rejected(raw gomidi.Message) error {
	return fmt.Errorf("%w: % X not readable as %s", ErrDecode, []byte(raw), raw.Type())
}

func checkData(data []byte) error {
	for i, b := range data {
		if IsStatus(b) {
			return fmt.Errorf("%w: byte %d (0x%02X) has the high bit set", ErrDecode, i+1, b)
		}
	}
	return nil
}
