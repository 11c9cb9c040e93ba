package seeds

import (
	"sync"
	"time"

	"github.com/tevino/abool"

	"github.com/vaultrand/prng/config"
	"github.com/vaultrand/prng/log"
	"github.com/vaultrand/prng/rng"
)

// DefaultRecordName is the record name used for the generator seed.
const DefaultRecordName = "fortuna.seed"

var checkpointIntervalSecs config.IntOption

func init() {
	err := config.Register(&config.Option{
		Name:            "Seed Checkpoint Interval",
		Key:             "random/checkpoint_interval_seconds",
		Description:     "Number of seconds between two seed state checkpoints to storage.",
		OptType:         config.OptTypeInt,
		DefaultValue:    int64(900),
		ValidationRegex: "^[1-9][0-9]{0,5}$",
	})
	if err != nil {
		panic(err)
	}
	checkpointIntervalSecs = config.GetAsInt("random/checkpoint_interval_seconds", 900)
}

// Manager drives the seed lifecycle: it primes the generator from the
// storage chain on startup and periodically checkpoints generator state
// back, so a process restart does not return the generator to a
// low-entropy state.
type Manager struct {
	chain      *Chain
	rng        *rng.CSPRNG
	recordName string

	started   *abool.AtomicBool
	startOnce sync.Once
	stopOnce  sync.Once
	shutdown  chan struct{}
	done      chan struct{}
}

// NewManager creates a lifecycle manager for the given chain and RNG
// instance.
func NewManager(chain *Chain, csprng *rng.CSPRNG) *Manager {
	return &Manager{
		chain:      chain,
		rng:        csprng,
		recordName: DefaultRecordName,
		started:    abool.New(),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start loads the newest usable seed record and primes the generator with
// it, then begins periodic checkpointing. When no backend yields a usable
// record the generator starts cold and has to accumulate collector entropy
// before it can serve output.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		record, err := m.chain.Load(m.recordName)
		switch {
		case err != nil:
			log.Warningf("seeds: no persisted seed available, generator starts cold: %s", err)
		default:
			if err := m.rng.ApplySeed(record.Data); err != nil {
				log.Errorf("seeds: failed to apply persisted seed: %s", err)
			} else {
				log.Infof("seeds: primed generator from seed written at %s", time.Unix(record.Timestamp, 0))
			}
		}

		m.started.Set()
		go m.checkpointWorker()
	})
}

// Stop checkpoints one final time and ends the checkpoint worker. Stop on a
// manager that was never started only performs the checkpoint.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.started.IsSet() {
			close(m.shutdown)
			<-m.done
		}
		m.Checkpoint()
	})
}

// Checkpoint captures current generator state and saves it through the
// chain. Failure to persist is logged, never fatal: serving random bytes
// must not depend on storage health.
func (m *Manager) Checkpoint() {
	data, err := m.rng.ExportSeed()
	if err != nil {
		// the generator has not been seeded yet, nothing worth saving
		log.Debugf("seeds: skipping checkpoint: %s", err)
		return
	}

	record := &SeedRecord{
		Name:      m.recordName,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	if err := m.chain.Save(record); err != nil {
		log.Warningf("seeds: checkpoint not persisted: %s", err)
	}
}

func (m *Manager) checkpointWorker() {
	defer close(m.done)

	for {
		interval := time.Duration(checkpointIntervalSecs()) * time.Second
		select {
		case <-time.After(interval):
			m.Checkpoint()
		case <-m.shutdown:
			return
		}
	}
}
