package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tevino/abool"
)

var (
	// ErrInvalidOptionType is returned by SetConfigOption if the value type
	// does not match the option type.
	ErrInvalidOptionType = errors.New("invalid option value type")

	validityFlag     = abool.NewBool(true)
	validityFlagLock sync.RWMutex
)

// getValidityFlag returns a flag that signifies if the configuration has
// been changed. The returned flag must only be read, never changed.
func getValidityFlag() *abool.AtomicBool {
	validityFlagLock.RLock()
	defer validityFlagLock.RUnlock()
	return validityFlag
}

// signalChanges marks the config's validityFlag as dirty.
func signalChanges() {
	validityFlagLock.Lock()
	validityFlag.SetTo(false)
	validityFlag = abool.NewBool(true)
	validityFlagLock.Unlock()
}

// SetConfigOption sets a single value in the configuration.
func SetConfigOption(key string, value interface{}) error {
	optionsLock.RLock()
	option, ok := options[key]
	optionsLock.RUnlock()
	if !ok {
		return fmt.Errorf("config: option %s does not exist", key)
	}

	option.Lock()
	if value == nil {
		option.activeValue = nil
		option.Unlock()
		signalChanges()
		return nil
	}

	valueCache, err := validateValue(option, value)
	if err != nil {
		option.Unlock()
		return err
	}
	option.activeValue = valueCache
	option.Unlock()

	signalChanges()
	return nil
}
