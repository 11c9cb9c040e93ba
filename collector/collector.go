package collector

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vaultrand/prng/config"
	"github.com/vaultrand/prng/log"
)

// Sink receives collected entropy. It is implemented by rng.CSPRNG.
type Sink interface {
	FeedEvent(value int16)
	FeedBytes(data []byte)
}

// Source is the contract every pluggable entropy source implements. A
// source additionally implements EventSource, BlockSource or both. Sources
// must not retain scheduler state.
type Source interface {
	// Name returns the configuration name of the source.
	Name() string
	// IsOperational is checked once before the source is scheduled. A
	// source that reports false is never called again.
	IsOperational() bool
}

// EventSource produces one difficult-to-predict 16-bit event per run.
type EventSource interface {
	Source
	Collect() (int16, error)
}

// BlockSource fetches a block of raw high-entropy bytes on demand.
type BlockSource interface {
	Source
	FetchBlock() ([]byte, error)
}

// Kind describes a known collector class that can be constructed from
// configuration.
type Kind struct {
	// Name is used in configuration keys ("collector/<name>/...").
	Name string
	// DefaultDelay is the collection delay used without an override.
	DefaultDelay time.Duration
	// DefaultEnabled controls whether the kind runs without explicit config.
	DefaultEnabled bool
	// Build constructs the source. A build error is logged and the kind is
	// skipped, other kinds are unaffected.
	Build func() (Source, error)

	delayOption  config.IntOption
	enableOption config.BoolOption
}

var (
	kindsLock sync.Mutex
	kinds     = make(map[string]*Kind)
)

// RegisterKind adds a collector class to the set that InitialiseStandard
// constructs. It also registers the per-kind configuration options.
func RegisterKind(kind *Kind) error {
	err := config.Register(&config.Option{
		Name:         fmt.Sprintf("Enable %s Collector", kind.Name),
		Key:          "collector/" + kind.Name + "/enable",
		Description:  fmt.Sprintf("Whether the %s entropy collector runs.", kind.Name),
		OptType:      config.OptTypeBool,
		DefaultValue: kind.DefaultEnabled,
	})
	if err != nil {
		return err
	}
	kind.enableOption = config.GetAsBool("collector/"+kind.Name+"/enable", kind.DefaultEnabled)

	err = config.Register(&config.Option{
		Name:            fmt.Sprintf("%s Collector Delay", kind.Name),
		Key:             "collector/" + kind.Name + "/delay_ms",
		Description:     fmt.Sprintf("Delay between two runs of the %s entropy collector, in milliseconds.", kind.Name),
		OptType:         config.OptTypeInt,
		DefaultValue:    kind.DefaultDelay.Milliseconds(),
		ValidationRegex: "^[1-9][0-9]{0,7}$",
	})
	if err != nil {
		return err
	}
	kind.delayOption = config.GetAsInt("collector/"+kind.Name+"/delay_ms", kind.DefaultDelay.Milliseconds())

	kindsLock.Lock()
	defer kindsLock.Unlock()
	kinds[kind.Name] = kind
	return nil
}

// InitialiseStandard constructs and registers every enabled collector kind
// with the given scheduler. A kind that cannot be constructed is logged and
// skipped.
func InitialiseStandard(s *Scheduler) {
	kindsLock.Lock()
	sorted := make([]*Kind, 0, len(kinds))
	for _, kind := range kinds {
		sorted = append(sorted, kind)
	}
	kindsLock.Unlock()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, kind := range sorted {
		if !kind.enableOption() {
			log.Tracef("collector: %s is disabled", kind.Name)
			continue
		}
		src, err := kind.Build()
		if err != nil {
			log.Errorf("collector: cannot construct %s: %s", kind.Name, err)
			continue
		}
		s.Initialise(src, time.Duration(kind.delayOption())*time.Millisecond)
	}
}
