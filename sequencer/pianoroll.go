package sequencer

import (
	"math"
	"slices"
)

// Roll is a pianoroll: one row per tick, one velocity per pitch.
type Roll [][PitchRange]uint8

// NewRoll returns an empty roll with the given number of ticks.
func NewRoll(ticks int) Roll {
	if ticks < 0 {
		ticks = 0
	}
	return make(Roll, ticks)
}

// Ticks returns the number of rows.
func (r Roll) Ticks() int {
	return len(r)
}

// At returns the velocity at tick/pitch, 0 outside the roll.
func (r Roll) At(tick int, pitch uint8) uint8 {
	if tick < 0 || tick >= len(r) || pitch >= PitchRange {
		return 0
	}
	return r[tick][pitch]
}

// Options controls FromNotes. The zero value derives the length from the
// notes, does not resample and keeps zero-length notes as one tick.
type Options struct {
	// MaxTick fixes the number of ticks before resampling. <= 0 derives it
	// from the latest note end.
	MaxTick int

	// Resample scales every tick value. 0 is treated as 1.
	Resample float64
	// Round is applied after scaling. Defaults to math.Round.
	Round func(float64) float64

	// Binary writes 1 for velocities above Threshold and 0 otherwise.
	Binary    bool
	Threshold uint8

	// DropZeroLength skips notes with Start == End instead of widening them to one tick.
	DropZeroLength bool
}

func (o Options) scale(tick int) int {
	f := o.Resample
	if f == 0 || f == 1 {
		return tick
	}
	round := o.Round
	if round == nil {
		round = math.Round
	}
	return int(round(float64(tick) * f))
}

// FromNotes renders notes into a roll. notes is not modified. Notes with
// velocity 0 are skipped; overlapping notes on one pitch keep the highest
// value; anything outside [0, ticks) is clipped.
func FromNotes(notes []Note, opts Options) Roll {
	ns := slices.Clone(notes)
	sortByEnd(ns)

	for i := range ns {
		ns[i].Start = opts.scale(ns[i].Start)
		ns[i].End = opts.scale(ns[i].End)
		if ns[i].End == ns[i].Start && !opts.DropZeroLength {
			ns[i].End++
		}
	}

	var ticks int
	if opts.MaxTick > 0 {
		ticks = opts.scale(opts.MaxTick)
	} else {
		for _, n := range ns {
			ticks = max(ticks, n.End)
		}
	}

	roll := NewRoll(ticks)
	for _, n := range ns {
		if n.Velocity == 0 || n.Pitch >= PitchRange {
			continue
		}
		v := n.Velocity
		if opts.Binary {
			if v > opts.Threshold {
				v = 1
			} else {
				v = 0
			}
		}
		for tick := max(n.Start, 0); tick < min(n.End, len(roll)); tick++ {
			if v > roll[tick][n.Pitch] {
				roll[tick][n.Pitch] = v
			}
		}
	}
	return roll
}

// ToNotes turns each run of non-zero cells on a pitch into a note. The
// velocity is taken from the first cell of the run and clamped to 127.
// Start and End are multiplied by resample (0 means 1) and truncated.
// Notes are ordered by start, then pitch.
func ToNotes(roll Roll, resample float64) []Note {
	if resample == 0 {
		resample = 1
	}
	var notes []Note
	for pitch := 0; pitch < PitchRange; pitch++ {
		start := -1
		for tick := 0; tick <= len(roll); tick++ {
			on := tick < len(roll) && roll[tick][pitch] > 0
			switch {
			case on && start < 0:
				start = tick
			case !on && start >= 0:
				notes = append(notes, Note{
					Start:    int(float64(start) * resample),
					End:      int(float64(tick) * resample),
					Pitch:    uint8(pitch),
					Velocity: min(roll[start][pitch], 127),
				})
				start = -1
			}
		}
	}
	sortByStart(notes)
	return notes
}
