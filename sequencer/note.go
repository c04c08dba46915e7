package sequencer

import (
	"cmp"
	"slices"
)

// PitchRange is the number of MIDI pitches.
const PitchRange = 128

// Note is a single note in ticks. End is exclusive.
type Note struct {
	Start    int
	End      int
	Pitch    uint8
	Velocity uint8
}

// Duration returns End - Start.
func (n Note) Duration() int {
	return n.End - n.Start
}

func sortByStart(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		return cmp.Compare(a.Start, b.Start)
	})
}

func sortByEnd(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		return cmp.Compare(a.End, b.End)
	})
}
