package collector

import (
	"errors"
	"time"

	"github.com/tidwall/rtime"
)

// NetTime samples the clock of remote time services. The network round trip
// and the remote clock skew are outside local attacker control. Disabled by
// default, as it causes periodic network traffic.
type NetTime struct{}

func init() {
	err := RegisterKind(&Kind{
		Name:           "nettime",
		DefaultDelay:   5 * time.Minute,
		DefaultEnabled: false,
		Build: func() (Source, error) {
			return &NetTime{}, nil
		},
	})
	if err != nil {
		panic(err)
	}
}

// Name implements Source.
func (n *NetTime) Name() string {
	return "nettime"
}

// IsOperational implements Source.
func (n *NetTime) IsOperational() bool {
	// a failed fetch is transient, the service set may come back
	return true
}

// Collect returns the low bits of a remote timestamp.
func (n *NetTime) Collect() (int16, error) {
	remote := rtime.Now()
	if remote.IsZero() {
		return 0, errors.New("no remote time service reachable")
	}
	local := time.Now()
	return int16(remote.UnixNano() ^ local.Sub(remote).Nanoseconds()), nil
}
