// Package midi frames and decodes MIDI 1.0 byte streams.
//
// A Tokenizer turns bytes, fed in chunks of any size, into complete raw
// messages (tokens), handling running status, realtime bytes interleaved
// into other messages and sysex spanning several feeds. A Parser decodes
// those tokens into Messages and queues them in arrival order.
//
// Malformed input is resynced locally and counted in Stats rather than
// returned as an error:
//   - data bytes with no status and no running status are dropped
//   - undefined status bytes (0xF4, 0xF5) become single-byte tokens
//   - 0xF7 outside a sysex is dropped
//   - a status byte cuts off any partial message or unterminated sysex
//
// An unterminated sysex stays pending until a terminator or a status byte
// arrives.
package midi
