package clock

import (
	"time"

	"go.uber.org/fx"
)

type Clock interface {
	Now() time.Time
}

// SystemClock reports local wall time; invoice dates and month buckets follow the shop's time zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock {
		return SystemClock{}
	}),
)
