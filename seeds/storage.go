package seeds

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/vaultrand/prng/log"
)

// ErrNotFound is returned by a storage backend when no record with the
// requested name exists.
var ErrNotFound = errors.New("seeds: record not found")

// Storage is the capability a seed storage backend provides: store and
// retrieve a named byte blob. Underlying resources are acquired and
// released per operation.
type Storage interface {
	// Name identifies the backend in logs.
	Name() string
	// Get retrieves a stored blob, or ErrNotFound.
	Get(name string) ([]byte, error)
	// Put stores a blob under the given name, replacing any previous one.
	Put(name string, data []byte) error
}

// Chain is an ordered fail-over list of storage backends. Reads try the
// backends in priority order, writes go to all of them.
type Chain struct {
	backends []Storage
}

// NewChain creates a storage chain. Backends are tried for reading in the
// given order.
func NewChain(backends ...Storage) *Chain {
	return &Chain{backends: backends}
}

// Load returns the first successfully decoded record. A backend that fails
// to read or holds a corrupt record is logged and skipped, the next backend
// is tried. An error is only returned when every backend failed.
func (c *Chain) Load(name string) (*SeedRecord, error) {
	var lastErr error

	for _, backend := range c.backends {
		data, err := backend.Get(name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Warningf("seeds: failed to read %s from %s: %s", name, backend.Name(), err)
			}
			lastErr = err
			continue
		}

		record, err := DecodeSeedRecord(data)
		if err != nil {
			log.Warningf("seeds: corrupt record %s in %s: %s", name, backend.Name(), err)
			lastErr = err
			continue
		}

		log.Debugf("seeds: loaded %s from %s", name, backend.Name())
		return record, nil
	}

	if lastErr == nil {
		lastErr = ErrNotFound
	}
	return nil, fmt.Errorf("seeds: no backend holds a usable record: %w", lastErr)
}

// Save writes the record to every backend independently and in parallel. A
// failing backend is logged and does not block or fail the writes to the
// others. An error is only returned when every backend failed - a partial
// loss of durability never stops the generator.
func (c *Chain) Save(record *SeedRecord) error {
	data, err := record.Encode()
	if err != nil {
		return err
	}

	var (
		group    errgroup.Group
		statLock sync.Mutex
		errs     *multierror.Error
		okCount  int
	)

	for _, backend := range c.backends {
		backend := backend
		group.Go(func() error {
			if err := backend.Put(record.Name, data); err != nil {
				log.Warningf("seeds: failed to write %s to %s: %s", record.Name, backend.Name(), err)
				statLock.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
				statLock.Unlock()
				return nil
			}
			statLock.Lock()
			okCount++
			statLock.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	if okCount == 0 && len(c.backends) > 0 {
		return fmt.Errorf("seeds: all backends failed to store %s: %w", record.Name, errs.ErrorOrNil())
	}
	return nil
}
