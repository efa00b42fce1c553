package reservations

import (
	"time"
)

type options struct {
	now      func() time.Time
	loc      *time.Location
	notifier Notifier
	numbers  *NumberGenerator
}

// Option configures an Engine or a Manager.
type Option func(*options)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the time zone that defines "today" for the center.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// WithNotifier sets where post-commit notifications go.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithNumberGenerator replaces the reservation number source.
func WithNumberGenerator(g *NumberGenerator) Option {
	return func(o *options) { o.numbers = g }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.loc == nil {
		o.loc = time.Local
	}
	if o.notifier == nil {
		o.notifier = NopNotifier{}
	}
	if o.numbers == nil {
		o.numbers = NewNumberGenerator(o.now, o.loc)
	}
	return o
}

// today returns the current calendar day in the center's time zone.
func (o options) today() string {
	return o.now().In(o.loc).Format("2006-01-02")
}
