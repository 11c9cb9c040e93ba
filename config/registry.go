package config

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// Variable type IDs of configuration options.
const (
	OptTypeString uint8 = 1
	OptTypeInt    uint8 = 2
	OptTypeBool   uint8 = 3
)

var (
	optionsLock sync.RWMutex
	options     = make(map[string]*Option)

	// ErrIncompleteCall is returned when Register is called with empty
	// mandatory fields.
	ErrIncompleteCall = errors.New("config: name, key, description and opttype are mandatory")
)

// Option describes a configuration option.
type Option struct {
	sync.Mutex

	Name            string
	Key             string
	Description     string
	OptType         uint8
	DefaultValue    interface{}
	ValidationRegex string

	compiledRegex *regexp.Regexp
	activeValue   *valueCache
}

// Register registers a new configuration option.
func Register(option *Option) error {
	if option.Name == "" ||
		option.Key == "" ||
		option.Description == "" ||
		option.OptType == 0 {
		return ErrIncompleteCall
	}

	if option.ValidationRegex != "" {
		var err error
		option.compiledRegex, err = regexp.Compile(option.ValidationRegex)
		if err != nil {
			return fmt.Errorf("config: could not compile ValidationRegex of %s: %w", option.Key, err)
		}
	}

	optionsLock.Lock()
	defer optionsLock.Unlock()
	options[option.Key] = option

	return nil
}
