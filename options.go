package fxchain

import (
	"io"
	"log/slog"
)

type Option func(*options)

type options struct {
	logger *slog.Logger
	input  Input
	blend  func(ch, n int) (l, r float64)
}

func defaultOptions() options {
	return options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithLogger sets the structured logger. Chains log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithInput sets the live input used when Config.RealInput is on.
func WithInput(in Input) Option {
	return func(o *options) {
		o.input = in
	}
}

// WithBlend sets the weighted downmix policy: the left and right weights of
// channel ch (ch >= 2) of n. The default sends half of each extra channel to
// each side.
func WithBlend(policy func(ch, n int) (l, r float64)) Option {
	return func(o *options) {
		o.blend = policy
	}
}
