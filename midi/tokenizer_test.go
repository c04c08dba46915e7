package midi

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func drainTokens(t *testing.T, tk *Tokenizer) [][]byte {
	t.Helper()
	var out [][]byte
	for tok := range tk.Tokens() {
		out = append(out, []byte(tok))
	}
	return out
}

func assertTokens(t *testing.T, got [][]byte, want ...[]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: % X", len(want), len(got), got)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("token %d: got % X want % X", i, got[i], want[i])
		}
	}
}

func TestTokenizerExplicitStatus(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 100, 0x80, 60, 0, 0xB0, 7, 127})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0x90, 60, 100},
		[]byte{0x80, 60, 0},
		[]byte{0xB0, 7, 127},
	)
}

func TestTokenizerRunningStatus(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 127, 61, 127})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0x90, 60, 127},
		[]byte{0x90, 61, 127},
	)
}

func TestTokenizerRunningStatusSingleDataByte(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0xC2, 5, 6, 7})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0xC2, 5},
		[]byte{0xC2, 6},
		[]byte{0xC2, 7},
	)
}

func TestTokenizerRealtimeInterruptsMessage(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 0xF8, 60, 0xFA, 127})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0xF8},
		[]byte{0xFA},
		[]byte{0x90, 60, 127},
	)
}

func TestTokenizerRealtimeKeepsRunningStatus(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 100, 0xF8, 61, 100})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0x90, 60, 100},
		[]byte{0xF8},
		[]byte{0x90, 61, 100},
	)
}

func TestTokenizerSysExSpansFeeds(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0xF0, 1, 2})
	if tk.Pending() != 0 {
		t.Fatalf("expected no ready tokens mid-sysex, got %d", tk.Pending())
	}
	tk.Feed([]byte{3, 0xF7})
	assertTokens(t, drainTokens(t, tk), []byte{0xF0, 1, 2, 3, 0xF7})
}

func TestTokenizerRealtimeInsideSysEx(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0xF0, 0x7E, 0xF8, 0x09, 0xF7})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0xF8},
		[]byte{0xF0, 0x7E, 0x09, 0xF7},
	)
}

func TestTokenizerStatusAbortsSysEx(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0xF0, 1, 2, 0x90, 60, 100})
	assertTokens(t, drainTokens(t, tk), []byte{0x90, 60, 100})
	if got := tk.Stats().AbortedSysEx; got != 1 {
		t.Fatalf("expected 1 aborted sysex, got %d", got)
	}
}

func TestTokenizerSysExStartAbortsMessage(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 0xF0, 1, 0xF7, 61, 100})
	assertTokens(t, drainTokens(t, tk), []byte{0xF0, 1, 0xF7})
	s := tk.Stats()
	if s.AbortedMessages != 1 {
		t.Fatalf("expected 1 aborted message, got %d", s.AbortedMessages)
	}
	// sysex clears running status, so the trailing data bytes are orphans
	if s.OrphanData != 2 {
		t.Fatalf("expected 2 orphan data bytes, got %d", s.OrphanData)
	}
}

func TestTokenizerOrphanDataDiscarded(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{60, 127})
	if tk.Pending() != 0 {
		t.Fatalf("expected no tokens, got %d", tk.Pending())
	}
	if got := tk.Stats().OrphanData; got != 2 {
		t.Fatalf("expected 2 orphan bytes, got %d", got)
	}
}

func TestTokenizerSystemCommonClearsRunningStatus(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 100, 0xF3, 5, 61, 100})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0x90, 60, 100},
		[]byte{0xF3, 5},
	)
	if got := tk.Stats().OrphanData; got != 2 {
		t.Fatalf("expected 2 orphan bytes after system common, got %d", got)
	}
}

func TestTokenizerSystemCommonLengths(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0xF1, 0x21, 0xF2, 0x10, 0x02, 0xF6})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0xF1, 0x21},
		[]byte{0xF2, 0x10, 0x02},
		[]byte{0xF6},
	)
}

func TestTokenizerUndefinedStatusIsLoneToken(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 1, 2, 0xF5, 3, 4, 0xF4, 0x80, 1, 2})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0x90, 1, 2},
		[]byte{0xF5},
		[]byte{0xF4},
		[]byte{0x80, 1, 2},
	)
	s := tk.Stats()
	if s.UnknownStatus != 2 || s.OrphanData != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestTokenizerStrayEndOfExclusive(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 100, 0xF7, 61, 100})
	assertTokens(t, drainTokens(t, tk), []byte{0x90, 60, 100})
	s := tk.Stats()
	if s.StrayEndOfExclusive != 1 || s.OrphanData != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestTokenizerStatusAbortsPartialMessage(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 0x80, 60, 0})
	assertTokens(t, drainTokens(t, tk), []byte{0x80, 60, 0})
	if got := tk.Stats().AbortedMessages; got != 1 {
		t.Fatalf("expected 1 aborted message, got %d", got)
	}
}

func TestTokenizerOversizeSysExDropped(t *testing.T) {
	tk := NewTokenizer(WithLimits(Limits{MaxSysExBytes: 4}))
	tk.Feed([]byte{0xF0, 1, 2, 0xF7})
	tk.Feed([]byte{0xF0, 1, 2, 3, 4, 0xF7})
	tk.Feed([]byte{0x90, 60, 100})
	assertTokens(t, drainTokens(t, tk),
		[]byte{0xF0, 1, 2, 0xF7},
		[]byte{0x90, 60, 100},
	)
	s := tk.Stats()
	if s.OversizeSysEx != 1 || s.AbortedSysEx != 0 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestTokenizerSysExLimitCountsEndByte(t *testing.T) {
	tk := NewTokenizer(WithLimits(Limits{MaxSysExBytes: 1}))
	tk.Feed([]byte{0xF0, 0xF7, 0xF0, 1, 0xF7, 0xF8})
	assertTokens(t, drainTokens(t, tk), []byte{0xF8})
	if got := tk.Stats().OversizeSysEx; got != 2 {
		t.Fatalf("expected 2 oversize sysex, got %d", got)
	}

	tk = NewTokenizer(WithLimits(Limits{MaxSysExBytes: 2}))
	tk.Feed([]byte{0xF0, 0xF7, 0xF0, 1, 0xF7})
	assertTokens(t, drainTokens(t, tk), []byte{0xF0, 0xF7})
	if got := tk.Stats().OversizeSysEx; got != 1 {
		t.Fatalf("expected 1 oversize sysex, got %d", got)
	}
}

func TestTokenizerUnterminatedSysExStaysPending(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0xF0, 1, 2, 3})
	if tk.Pending() != 0 {
		t.Fatalf("expected unterminated sysex to stay pending")
	}
	if got := tk.Stats().Resyncs(); got != 0 {
		t.Fatalf("expected no resyncs yet, got %d", got)
	}
}

func TestTokenizerFeedByteMatchesFeed(t *testing.T) {
	stream := []byte{
		0xF8, 60, 0x90, 60, 100, 61, 0xF8, 100, 0xF0, 0x41, 0xFE, 0x10, 0xF7,
		0xB0, 7, 0xF5, 0xC1, 3, 4, 0xE0, 0, 0x40, 0xF2, 1, 2, 5, 0xF6,
	}
	bulk := NewTokenizer()
	bulk.Feed(stream)

	single := NewTokenizer()
	for _, b := range stream {
		single.FeedByte(b)
	}

	want := drainTokens(t, bulk)
	assertTokens(t, drainTokens(t, single), want...)
	if bulk.Stats() != single.Stats() {
		t.Fatalf("stats differ: bulk=%+v single=%+v", bulk.Stats(), single.Stats())
	}
}

func TestTokenizerFeedIntsRejectsWholeCall(t *testing.T) {
	tk := NewTokenizer()
	err := tk.FeedInts([]int{0x90, 60, 256})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) || invalid.Index != 2 || invalid.Value != 256 {
		t.Fatalf("unexpected error detail: %v", err)
	}
	if got := tk.Stats().Bytes; got != 0 {
		t.Fatalf("expected no bytes consumed, got %d", got)
	}

	if err := tk.FeedInts([]int{-1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for -1, got %v", err)
	}

	// running status must not have been set by the rejected call
	if err := tk.FeedInts([]int{60, 100}); err != nil {
		t.Fatalf("feed ints: %v", err)
	}
	if tk.Pending() != 0 {
		t.Fatalf("expected no tokens, got %d", tk.Pending())
	}
}

func TestTokenizerTokensYieldEachOnce(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0xF8, 0xFA, 0xFC})
	for range tk.Tokens() {
		break
	}
	if tk.Pending() != 2 {
		t.Fatalf("expected 2 tokens left after early break, got %d", tk.Pending())
	}
	tk.Feed([]byte{0xFB})
	assertTokens(t, drainTokens(t, tk), []byte{0xFA}, []byte{0xFC}, []byte{0xFB})
	if _, ok := tk.Next(); ok {
		t.Fatalf("expected empty tokenizer")
	}
}

func TestTokenizerTokensAreNotAliased(t *testing.T) {
	tk := NewTokenizer()
	tk.Feed([]byte{0x90, 60, 100, 61, 101})
	first, _ := tk.Next()
	first[1] = 0
	second, _ := tk.Next()
	if !bytes.Equal(second, []byte{0x90, 61, 101}) {
		t.Fatalf("second token changed: % X", []byte(second))
	}
}

func TestTokenizerLogsResync(t *testing.T) {
	var buf bytes.Buffer
	tk := NewTokenizer(WithLogger(zerolog.New(&buf)))
	tk.Feed([]byte{0x42})
	if !strings.Contains(buf.String(), "orphan_data") {
		t.Fatalf("expected resync log entry, got %q", buf.String())
	}
}
