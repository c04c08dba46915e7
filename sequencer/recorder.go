package sequencer

import (
	"slices"

	"go-midiparse/midi"
)

// Recorder pairs note-on and note-off messages into notes.
// Notes are tracked per pitch across all channels.
type Recorder struct {
	held  map[uint8]Note // by pitch, End unset
	notes []Note
}

func NewRecorder() *Recorder {
	return &Recorder{held: make(map[uint8]Note)}
}

// Add records msg at tick. A note-on for a pitch that is already held ends
// the held note first. Note-on with velocity 0 is a note-off.
func (r *Recorder) Add(tick int, msg midi.Message) {
	var channel, key, velocity uint8
	switch {
	case msg.Raw.GetNoteStart(&channel, &key, &velocity):
		r.release(tick, key)
		r.held[key] = Note{Start: tick, Pitch: key, Velocity: velocity}
	case msg.Raw.GetNoteEnd(&channel, &key):
		r.release(tick, key)
	}
}

// Held returns the number of notes still sounding.
func (r *Recorder) Held() int {
	return len(r.held)
}

// Flush ends every held note at tick.
func (r *Recorder) Flush(tick int) {
	keys := make([]uint8, 0, len(r.held))
	for k := range r.held {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		r.release(tick, k)
	}
}

// Notes returns the finished notes ordered by start.
func (r *Recorder) Notes() []Note {
	out := slices.Clone(r.notes)
	sortByStart(out)
	return out
}

func (r *Recorder) release(tick int, key uint8) {
	n, ok := r.held[key]
	if !ok {
		return
	}
	delete(r.held, key)
	n.End = max(tick, n.Start)
	r.notes = append(r.notes, n)
}
