package engine

import "time"

// Options tunes timing behaviour shared by every engine of a Manager.
type Options struct {
	// ClickDelay separates button press and release in Click.
	ClickDelay time.Duration
	// WaitTimeout bounds how long a completion waits for an observable effect.
	WaitTimeout time.Duration
	// PollInterval is the effect polling period.
	PollInterval time.Duration
}

// DefaultOptions mirrors xdo's timings.
func DefaultOptions() Options {
	return Options{
		ClickDelay:   12 * time.Millisecond,
		WaitTimeout:  time.Second,
		PollInterval: 30 * time.Millisecond,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.ClickDelay < 0 {
		o.ClickDelay = 0
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = def.WaitTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	return o
}
