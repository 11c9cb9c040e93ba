package collector

import (
	"errors"
	"math"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// SystemStats samples CPU accounting and memory statistics. The exact
// values depend on everything else running on the machine, which makes
// their low bits hard to predict from outside.
type SystemStats struct{}

func init() {
	err := RegisterKind(&Kind{
		Name:           "system",
		DefaultDelay:   250 * time.Millisecond,
		DefaultEnabled: true,
		Build: func() (Source, error) {
			return &SystemStats{}, nil
		},
	})
	if err != nil {
		panic(err)
	}
}

// Name implements Source.
func (s *SystemStats) Name() string {
	return "system"
}

// IsOperational implements Source.
func (s *SystemStats) IsOperational() bool {
	_, err := cpu.Times(false)
	return err == nil
}

// Collect mixes the current CPU and memory counters into one 16-bit event.
func (s *SystemStats) Collect() (int16, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return 0, err
	}
	if len(times) == 0 {
		return 0, errors.New("no cpu accounting data available")
	}

	var acc uint64
	for _, t := range times {
		acc ^= math.Float64bits(t.User)
		acc ^= math.Float64bits(t.System) << 13
		acc ^= math.Float64bits(t.Idle) << 27
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		acc ^= vm.Free
		acc ^= vm.Available << 7
	}

	return int16(acc ^ acc>>16 ^ acc>>32 ^ acc>>48), nil
}
