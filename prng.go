// Package prng provides a cryptographically secure pseudo random number
// generator based on the Fortuna design. Entropy is gathered continuously
// from a set of collectors and distributed over 32 pools, and seed state
// is persisted across restarts through a chain of storage backends.
//
// Most users only need Init and Shutdown plus the rng package surface:
//
//	prng.Init("/var/lib/myapp/seeds")
//	defer prng.Shutdown()
//	buf, err := rng.Bytes(32)
package prng

import (
	"path/filepath"
	"sync"

	"github.com/vaultrand/prng/collector"
	_ "github.com/vaultrand/prng/internet"
	"github.com/vaultrand/prng/rng"
	"github.com/vaultrand/prng/seeds"
)

var (
	startupLock sync.Mutex
	scheduler   *collector.Scheduler
	manager     *seeds.Manager
	boltBackend *seeds.BBolt
)

// Init starts entropy collection and seed persistence. Seeds are stored
// both as flat files and in a bolt database below seedDir. Init may only
// be called once; use Shutdown to stop everything again.
func Init(seedDir string) error {
	startupLock.Lock()
	defer startupLock.Unlock()

	fileBackend, err := seeds.NewFileStorage(seedDir)
	if err != nil {
		return err
	}
	boltBackend, err = seeds.NewBBolt(filepath.Join(seedDir, "seeds.bbolt"))
	if err != nil {
		return err
	}

	chain := seeds.NewChain(fileBackend, boltBackend)
	manager = seeds.NewManager(chain, rng.Default())
	manager.Start()

	scheduler = collector.NewScheduler(rng.Default())
	rng.Default().SetSpeedResetHook(scheduler.SpeedReset)
	collector.InitialiseStandard(scheduler)

	return nil
}

// Suspend pauses all entropy collection, for example before system sleep.
func Suspend() {
	startupLock.Lock()
	defer startupLock.Unlock()

	if scheduler != nil {
		scheduler.Suspend()
	}
}

// Restart resumes entropy collection after a Suspend.
func Restart() {
	startupLock.Lock()
	defer startupLock.Unlock()

	if scheduler != nil {
		scheduler.Restart()
	}
}

// Shutdown stops entropy collection and writes a final seed checkpoint.
func Shutdown() {
	startupLock.Lock()
	defer startupLock.Unlock()

	if scheduler != nil {
		scheduler.Shutdown()
		scheduler = nil
	}
	if manager != nil {
		manager.Stop()
		manager = nil
	}
	if boltBackend != nil {
		_ = boltBackend.Close()
		boltBackend = nil
	}
}
