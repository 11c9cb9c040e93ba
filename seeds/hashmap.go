package seeds

import (
	"sync"
)

// HashMap is an in-memory storage backend. It provides no durability across
// restarts and exists for testing and as a last-resort chain member.
type HashMap struct {
	lock sync.RWMutex
	db   map[string][]byte
}

// NewHashMap creates an empty in-memory backend.
func NewHashMap() *HashMap {
	return &HashMap{
		db: make(map[string][]byte),
	}
}

// Name implements Storage.
func (hm *HashMap) Name() string {
	return "hashmap"
}

// Get implements Storage.
func (hm *HashMap) Get(name string) ([]byte, error) {
	hm.lock.RLock()
	defer hm.lock.RUnlock()

	data, ok := hm.db[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, data...), nil
}

// Put implements Storage.
func (hm *HashMap) Put(name string, data []byte) error {
	hm.lock.Lock()
	defer hm.lock.Unlock()

	hm.db[name] = append([]byte{}, data...)
	return nil
}
