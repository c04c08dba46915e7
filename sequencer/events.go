package sequencer

import (
	"cmp"
	"slices"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-midiparse/midi"
)

// TimedMessage is a message scheduled at a tick.
type TimedMessage struct {
	Tick    int
	Message gomidi.Message
}

// ToMessages derives note-on/note-off messages on channel from a roll.
// Messages are ordered by tick; at the same tick note-offs come before
// note-ons, each group by ascending pitch.
func ToMessages(roll Roll, channel uint8) []TimedMessage {
	notes := ToNotes(roll, 1)
	events := make([]TimedMessage, 0, len(notes)*2)
	for _, n := range notes {
		events = append(events,
			TimedMessage{Tick: n.Start, Message: gomidi.NoteOn(channel, n.Pitch, n.Velocity)},
			TimedMessage{Tick: n.End, Message: gomidi.NoteOff(channel, n.Pitch)},
		)
	}
	slices.SortStableFunc(events, func(a, b TimedMessage) int {
		if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Message[0]&0xF0, b.Message[0]&0xF0); c != 0 {
			return c // 0x80 sorts before 0x90
		}
		return cmp.Compare(a.Message[1], b.Message[1])
	})
	return events
}

// Encode concatenates the raw bytes of msgs. With runningStatus set, a
// channel voice status byte equal to the previous one is omitted.
func Encode(msgs []TimedMessage, runningStatus bool) []byte {
	var out []byte
	var last byte
	for _, m := range msgs {
		b := m.Message.Bytes()
		if len(b) == 0 {
			continue
		}
		status := b[0]
		switch {
		case runningStatus && midi.IsChannelVoice(status) && status == last:
			out = append(out, b[1:]...)
		default:
			out = append(out, b...)
		}
		switch {
		case midi.IsChannelVoice(status):
			last = status
		case !midi.IsRealtime(status):
			last = 0
		}
	}
	return out
}
