package collector

import (
	"time"
)

// Jitter uses the variation in time between its own scheduled runs as an
// entropy source. The more work the process does, the better the quality,
// as the scheduler cannot dispatch the run at the exact requested time.
type Jitter struct {
	last int64
}

func init() {
	err := RegisterKind(&Kind{
		Name:           "jitter",
		DefaultDelay:   50 * time.Millisecond,
		DefaultEnabled: true,
		Build: func() (Source, error) {
			return &Jitter{last: time.Now().UnixNano()}, nil
		},
	})
	if err != nil {
		panic(err)
	}
}

// Name implements Source.
func (j *Jitter) Name() string {
	return "jitter"
}

// IsOperational implements Source.
func (j *Jitter) IsOperational() bool {
	return true
}

// Collect returns the low bits of the time since the previous run.
func (j *Jitter) Collect() (int16, error) {
	now := time.Now().UnixNano()
	diff := now - j.last
	j.last = now
	return int16(diff), nil
}
