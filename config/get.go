package config

import (
	"github.com/vaultrand/prng/log"
)

type (
	// StringOption defines the returned function by GetAsString.
	StringOption func() string
	// IntOption defines the returned function by GetAsInt.
	IntOption func() int64
	// BoolOption defines the returned function by GetAsBool.
	BoolOption func() bool
)

// GetAsString returns a function that returns the wanted string with high performance.
func GetAsString(key string, fallback string) StringOption {
	valid := getValidityFlag()
	value := findStringValue(key, fallback)
	return func() string {
		if !valid.IsSet() {
			valid = getValidityFlag()
			value = findStringValue(key, fallback)
		}
		return value
	}
}

// GetAsInt returns a function that returns the wanted int with high performance.
func GetAsInt(key string, fallback int64) IntOption {
	valid := getValidityFlag()
	value := findIntValue(key, fallback)
	return func() int64 {
		if !valid.IsSet() {
			valid = getValidityFlag()
			value = findIntValue(key, fallback)
		}
		return value
	}
}

// GetAsBool returns a function that returns the wanted bool with high performance.
func GetAsBool(key string, fallback bool) BoolOption {
	valid := getValidityFlag()
	value := findBoolValue(key, fallback)
	return func() bool {
		if !valid.IsSet() {
			valid = getValidityFlag()
			value = findBoolValue(key, fallback)
		}
		return value
	}
}

// findValue finds the set or default value of the option with the given key.
func findValue(key string) interface{} {
	optionsLock.RLock()
	option, ok := options[key]
	optionsLock.RUnlock()
	if !ok {
		log.Errorf("config: request for unregistered option: %s", key)
		return nil
	}

	option.Lock()
	defer option.Unlock()

	if option.activeValue != nil {
		return option.activeValue.getData(option)
	}
	return option.DefaultValue
}

func findStringValue(key string, fallback string) (value string) {
	result := findValue(key)
	if result == nil {
		return fallback
	}
	if v, ok := result.(string); ok {
		return v
	}
	return fallback
}

func findIntValue(key string, fallback int64) (value int64) {
	result := findValue(key)
	if result == nil {
		return fallback
	}
	switch v := result.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	}
	return fallback
}

func findBoolValue(key string, fallback bool) (value bool) {
	result := findValue(key)
	if result == nil {
		return fallback
	}
	if v, ok := result.(bool); ok {
		return v
	}
	return fallback
}
