package collector

import (
	"crypto/rand"
	"fmt"
	"time"
)

const osBlockSize = 64

// OSSource pulls blocks of entropy from the operating system RNG. It keeps
// the generator healthy even when all other sources are starved.
type OSSource struct{}

func init() {
	err := RegisterKind(&Kind{
		Name:           "os",
		DefaultDelay:   10 * time.Second,
		DefaultEnabled: true,
		Build: func() (Source, error) {
			return &OSSource{}, nil
		},
	})
	if err != nil {
		panic(err)
	}
}

// Name implements Source.
func (o *OSSource) Name() string {
	return "os"
}

// IsOperational implements Source.
func (o *OSSource) IsOperational() bool {
	var probe [1]byte
	_, err := rand.Read(probe[:])
	return err == nil
}

// FetchBlock reads a block of entropy from the OS.
func (o *OSSource) FetchBlock() ([]byte, error) {
	osEntropy := make([]byte, osBlockSize)
	n, err := rand.Read(osEntropy)
	if err != nil {
		return nil, fmt.Errorf("could not read entropy from os: %w", err)
	}
	if n != osBlockSize {
		return nil, fmt.Errorf("could not read enough entropy from os: got only %d bytes instead of %d", n, osBlockSize)
	}
	return osEntropy, nil
}
