// Package utility provides small helpers built on top of the random
// number generator, such as UUID creation.
package utility

import (
	"net"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/vaultrand/prng/rng"
)

var (
	uuidGenerator     uuid.Generator
	uuidGeneratorOnce sync.Once
)

func getUUIDGenerator() uuid.Generator {
	uuidGeneratorOnce.Do(func() {
		uuidGenerator = uuid.NewGenWithOptions(
			uuid.WithHWAddrFunc(hardwareAddr),
			uuid.WithRandomReader(rng.Reader),
		)
	})
	return uuidGenerator
}

// NewUUID returns a new time based (Type 1) UUID. The node identifier
// is taken from a network interface where available, otherwise a
// random multicast address is used.
func NewUUID() (uuid.UUID, error) {
	return getUUIDGenerator().NewV1()
}

func hardwareAddr() (net.HardwareAddr, error) {
	interfaces, err := net.Interfaces()
	if err == nil {
		for _, iface := range interfaces {
			if iface.Flags&net.FlagLoopback != 0 {
				continue
			}
			if len(iface.HardwareAddr) >= 6 {
				return iface.HardwareAddr, nil
			}
		}
	}

	// No usable interface, fall back to a random address in the closed
	// CF range. The multicast bit keeps it off any real MAC.
	addr := make(net.HardwareAddr, 6)
	if _, err := rng.Reader.Read(addr); err != nil {
		return nil, err
	}
	addr[0] = 0xcf
	return addr, nil
}
