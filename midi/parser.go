package midi

import (
	"errors"
	"iter"
)

// Parser decodes a MIDI byte stream into a FIFO of messages. Not safe for
// concurrent use.
type Parser struct {
	tok          *Tokenizer
	decode       Decoder
	messages     queue[Message]
	decodeErrors int
}

// NewParser creates a parser with an empty queue and no running status.
func NewParser(opts ...Option) *Parser {
	o := buildOptions(opts)
	return &Parser{
		tok:    NewTokenizer(opts...),
		decode: o.decoder,
	}
}

// Feed tokenizes data and queues every message it completes. Tokens the
// decoder rejects are dropped and reported as joined *DecodeError values;
// the remaining tokens are still queued.
func (p *Parser) Feed(data []byte) error {
	p.tok.Feed(data)
	return p.drain()
}

// FeedByte feeds a single byte.
func (p *Parser) FeedByte(b byte) error {
	p.tok.FeedByte(b)
	return p.drain()
}

// FeedInts rejects the whole call with an *InvalidInputError if any value is
// outside 0..255.
func (p *Parser) FeedInts(values []int) error {
	if err := p.tok.FeedInts(values); err != nil {
		return err
	}
	return p.drain()
}

func (p *Parser) drain() error {
	var errs []error
	for tok := range p.tok.Tokens() {
		msg, err := p.decode(tok)
		if err != nil {
			p.decodeErrors++
			errs = append(errs, &DecodeError{Token: tok, Err: err})
			continue
		}
		p.messages.push(msg)
	}
	return errors.Join(errs...)
}

// Pending returns the number of queued messages.
func (p *Parser) Pending() int {
	return p.messages.len()
}

// Pop removes and returns the oldest message. ok is false when the queue is empty.
func (p *Parser) Pop() (msg Message, ok bool) {
	return p.messages.pop()
}

// GetMessage returns the first queued message, if any.
func (p *Parser) GetMessage() (Message, bool) {
	return p.Pop()
}

// Messages drains the queue in FIFO order.
func (p *Parser) Messages() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			msg, ok := p.messages.pop()
			if !ok || !yield(msg) {
				return
			}
		}
	}
}

// Stats returns the tokenizer counters plus decode failures.
func (p *Parser) Stats() Stats {
	s := p.tok.Stats()
	s.DecodeErrors = p.decodeErrors
	return s
}
