package midi

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("midi: value outside byte range 0..255")
	ErrDecode       = errors.New("midi: token cannot be decoded")
)

// InvalidInputError reports the first out-of-range value of a rejected feed.
type InvalidInputError struct {
	Index int
	Value int
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("midi: value %d at index %d outside byte range 0..255", e.Value, e.Index)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// DecodeError is returned when the decoder rejects a framed token.
type DecodeError struct {
	Token Token
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("midi: decode % X: %v", []byte(e.Token), e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// checkBytes validates values without side effects.
func checkBytes(values []int) ([]byte, error) {
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 0xFF {
			return nil, &InvalidInputError{Index: i, Value: v}
		}
		out[i] = byte(v)
	}
	return out, nil
}
