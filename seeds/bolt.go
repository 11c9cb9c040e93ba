package seeds

import (
	"time"

	"go.etcd.io/bbolt"
)

var bucketName = []byte{0}

// BBolt stores records in a bbolt database file.
type BBolt struct {
	db *bbolt.DB
}

// NewBBolt opens/creates a bbolt database at the given path.
func NewBBolt(path string) (*BBolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BBolt{db: db}, nil
}

// Name implements Storage.
func (b *BBolt) Name() string {
	return "bbolt"
}

// Get implements Storage.
func (b *BBolt) Get(name string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketName).Get([]byte(name))
		if value == nil {
			return ErrNotFound
		}
		data = append([]byte{}, value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put implements Storage.
func (b *BBolt) Put(name string, data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(name), data)
	})
}

// Close closes the underlying database.
func (b *BBolt) Close() error {
	return b.db.Close()
}
