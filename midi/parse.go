package midi

// ParseAll parses a complete buffer and returns every message in it.
// Use a Parser for streams.
func ParseAll(data []byte) ([]Message, error) {
	p := NewParser()
	err := p.Feed(data)
	msgs := make([]Message, 0, p.Pending())
	for msg := range p.Messages() {
		msgs = append(msgs, msg)
	}
	return msgs, err
}

// Parse returns the first message in data. Anything after it is discarded.
func Parse(data []byte) (Message, bool, error) {
	p := NewParser()
	err := p.Feed(data)
	msg, ok := p.GetMessage()
	return msg, ok, err
}
