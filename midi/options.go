package midi

import "github.com/rs/zerolog"

// Limits constrains tokenizer memory use.
type Limits struct {
	// MaxSysExBytes caps a sysex message including F0 and F7. Zero means unlimited.
	MaxSysExBytes int
}

func DefaultLimits() Limits {
	return Limits{}
}

type options struct {
	logger  zerolog.Logger
	limits  Limits
	decoder Decoder
}

// Option configures a Tokenizer or Parser.
type Option func(*options)

// WithLogger routes resync diagnostics to logger at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLimits sets framing limits.
func WithLimits(limits Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithDecoder replaces Decode as the token decoder. Ignored by NewTokenizer.
func WithDecoder(d Decoder) Option {
	return func(o *options) {
		if d != nil {
			o.decoder = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:  zerolog.Nop(),
		limits:  DefaultLimits(),
		decoder: Decode,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
