package midi

// Channel voice status bytes (high nibble, low nibble is the channel)
const (
	NoteOff        uint8 = 0x80
	NoteOn         uint8 = 0x90
	PolyAfterTouch uint8 = 0xA0
	CC             uint8 = 0xB0
	ProgramChange  uint8 = 0xC0
	AfterTouch     uint8 = 0xD0
	PitchBend      uint8 = 0xE0
)

// System common status bytes
const (
	SysExStart   uint8 = 0xF0
	QuarterFrame uint8 = 0xF1
	SongPosition uint8 = 0xF2
	SongSelect   uint8 = 0xF3
	TuneRequest  uint8 = 0xF6
	SysExEnd     uint8 = 0xF7
)

// System realtime status bytes
const (
	TimingClock uint8 = 0xF8
	Tick        uint8 = 0xF9
	Start       uint8 = 0xFA
	Continue    uint8 = 0xFB
	Stop        uint8 = 0xFC
	ActiveSense uint8 = 0xFE
	Reset       uint8 = 0xFF
)

// IsStatus reports whether b has its high bit set.
func IsStatus(b byte) bool {
	return b&0x80 != 0
}

// IsChannelVoice reports whether b is a channel voice status byte (0x80-0xEF).
func IsChannelVoice(b byte) bool {
	return b >= 0x80 && b < 0xF0
}

// IsRealtime reports whether b is a single-byte realtime message (0xF8-0xFF).
func IsRealtime(b byte) bool {
	return b >= 0xF8
}

// IsSystemCommon reports whether b is a non-realtime system status byte (0xF0-0xF7).
func IsSystemCommon(b byte) bool {
	return b >= 0xF0 && b < 0xF8
}

// DataLength returns the number of data bytes that follow status.
// known is false for undefined status bytes (0xF4, 0xF5) and for bytes that
// are not framed by a fixed length (sysex start/end, data bytes).
func DataLength(status byte) (n int, known bool) {
	if IsChannelVoice(status) {
		switch status & 0xF0 {
		case ProgramChange, AfterTouch:
			return 1, true
		default:
			return 2, true
		}
	}
	switch status {
	case QuarterFrame, SongSelect:
		return 1, true
	case SongPosition:
		return 2, true
	case TuneRequest:
		return 0, true
	}
	if IsRealtime(status) {
		return 0, true
	}
	return 0, false
}
