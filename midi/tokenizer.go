package midi

import (
	"fmt"
	"iter"

	"github.com/rs/zerolog"
)

// Token is the raw bytes of one fully framed message.
type Token []byte

// Status returns the leading status byte, or 0 for an empty token.
func (t Token) Status() byte {
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

func (t Token) String() string {
	return fmt.Sprintf("% X", []byte(t))
}

// Stats counts bytes, tokens and the malformed input the tokenizer recovered from.
type Stats struct {
	Bytes  int
	Tokens int

	OrphanData          int // data byte with no status and no running status
	UnknownStatus       int // undefined status byte framed as a lone token
	StrayEndOfExclusive int // F7 with no sysex open
	AbortedMessages     int // partial message cut off by a status byte
	AbortedSysEx        int // sysex cut off by a status byte or a new F0
	OversizeSysEx       int // sysex dropped for exceeding Limits.MaxSysExBytes

	DecodeErrors int // tokens rejected by the decoder (Parser only)
}

// Resyncs returns the total number of recovered framing errors.
func (s Stats) Resyncs() int {
	return s.OrphanData + s.UnknownStatus + s.StrayEndOfExclusive +
		s.AbortedMessages + s.AbortedSysEx + s.OversizeSysEx
}

// Tokenizer frames a MIDI byte stream into tokens. It keeps running status,
// partial messages and partial sysex across Feed calls. Not safe for
// concurrent use.
type Tokenizer struct {
	running byte // last channel voice status, 0 when unset

	status byte // status of the open message, 0 when none
	buf    []byte
	want   int

	inSysEx  bool
	dropping bool // oversize sysex, discard until F7 or status
	sysex    []byte

	ready  queue[Token]
	stats  Stats
	limits Limits
	log    zerolog.Logger
}

// NewTokenizer creates a tokenizer with no running status.
func NewTokenizer(opts ...Option) *Tokenizer {
	o := buildOptions(opts)
	return &Tokenizer{
		limits: o.limits,
		log:    o.logger,
	}
}

// Feed processes data in order.
func (t *Tokenizer) Feed(data []byte) {
	for _, b := range data {
		t.feedByte(b)
	}
}

// FeedByte processes a single byte.
func (t *Tokenizer) FeedByte(b byte) {
	t.feedByte(b)
}

// FeedInts validates every value first and rejects the whole call if any is
// outside 0..255; nothing is fed in that case.
func (t *Tokenizer) FeedInts(values []int) error {
	data, err := checkBytes(values)
	if err != nil {
		return err
	}
	t.Feed(data)
	return nil
}

// Next pops the oldest ready token.
func (t *Tokenizer) Next() (Token, bool) {
	return t.ready.pop()
}

// Tokens drains ready tokens. Each token is yielded once; tokens framed by
// later feeds are picked up by a new range over Tokens.
func (t *Tokenizer) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, ok := t.ready.pop()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Pending returns the number of ready tokens.
func (t *Tokenizer) Pending() int {
	return t.ready.len()
}

func (t *Tokenizer) Stats() Stats {
	return t.stats
}

func (t *Tokenizer) feedByte(b byte) {
	t.stats.Bytes++

	switch {
	case IsRealtime(b):
		// Realtime bytes leave every other piece of state alone.
		t.emit(Token{b})
	case b == SysExStart:
		t.closeMessage(b)
		t.closeSysEx(b)
		t.running = 0
		t.inSysEx = true
		t.sysex = append(make([]byte, 0, 16), b)
	case t.inSysEx && !IsStatus(b):
		t.appendSysEx(b)
	case t.inSysEx && b == SysExEnd:
		if limit := t.limits.MaxSysExBytes; !t.dropping && limit > 0 && len(t.sysex)+1 > limit {
			t.resync("oversize_sysex", b, &t.stats.OversizeSysEx)
			t.dropping = true
		}
		if !t.dropping {
			t.sysex = append(t.sysex, b)
			t.emit(Token(t.sysex))
		}
		t.sysex = nil
		t.inSysEx = false
		t.dropping = false
	case IsStatus(b):
		t.closeSysEx(b)
		t.feedStatus(b)
	default:
		t.feedData(b)
	}
}

func (t *Tokenizer) appendSysEx(b byte) {
	if t.dropping {
		return
	}
	// Reserve room for this byte and the closing F7.
	if limit := t.limits.MaxSysExBytes; limit > 0 && len(t.sysex)+2 > limit {
		t.resync("oversize_sysex", b, &t.stats.OversizeSysEx)
		t.sysex = nil
		t.dropping = true
		return
	}
	t.sysex = append(t.sysex, b)
}

// closeSysEx discards an unterminated sysex.
func (t *Tokenizer) closeSysEx(b byte) {
	if !t.inSysEx {
		return
	}
	if !t.dropping {
		t.resync("aborted_sysex", b, &t.stats.AbortedSysEx)
	}
	t.sysex = nil
	t.inSysEx = false
	t.dropping = false
}

// closeMessage discards a partially assembled message.
func (t *Tokenizer) closeMessage(b byte) {
	if t.status != 0 {
		t.resync("aborted_message", b, &t.stats.AbortedMessages)
	}
	t.status = 0
	t.buf = nil
	t.want = 0
}

func (t *Tokenizer) feedStatus(b byte) {
	t.closeMessage(b)

	if IsChannelVoice(b) {
		t.running = b
	} else {
		t.running = 0
	}

	if b == SysExEnd {
		t.resync("stray_eox", b, &t.stats.StrayEndOfExclusive)
		return
	}

	n, known := DataLength(b)
	if !known {
		t.resync("unknown_status", b, &t.stats.UnknownStatus)
		n = 0
	}
	if n == 0 {
		t.emit(Token{b})
		return
	}
	t.open(b, n)
}

func (t *Tokenizer) feedData(b byte) {
	if t.status == 0 {
		if t.running == 0 {
			t.resync("orphan_data", b, &t.stats.OrphanData)
			return
		}
		n, _ := DataLength(t.running)
		t.open(t.running, n)
	}
	t.buf = append(t.buf, b)
	if len(t.buf) == t.want {
		t.emit(Token(t.buf))
		t.status = 0
		t.buf = nil
		t.want = 0
	}
}

func (t *Tokenizer) open(status byte, dataLen int) {
	t.status = status
	t.want = dataLen + 1
	t.buf = append(make([]byte, 0, t.want), status)
}

func (t *Tokenizer) emit(tok Token) {
	t.stats.Tokens++
	t.ready.push(tok)
}

func (t *Tokenizer) resync(reason string, b byte, counter *int) {
	*counter++
	t.log.Debug().
		Str("reason", reason).
		Str("byte", fmt.Sprintf("0x%02X", b)).
		Int("offset", t.stats.Bytes-1).
		Msg("midi resync")
}
