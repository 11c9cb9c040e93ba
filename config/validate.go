package config

import (
	"fmt"
)

type valueCache struct {
	stringVal string
	intVal    int64
	boolVal   bool
}

func (vc *valueCache) getData(opt *Option) interface{} {
	switch opt.OptType {
	case OptTypeString:
		return vc.stringVal
	case OptTypeInt:
		return vc.intVal
	case OptTypeBool:
		return vc.boolVal
	default:
		return nil
	}
}

func validateValue(option *Option, value interface{}) (*valueCache, error) {
	switch v := value.(type) {
	case string:
		if option.OptType != OptTypeString {
			return nil, fmt.Errorf("%w: option %s does not take a string", ErrInvalidOptionType, option.Key)
		}
		if option.compiledRegex != nil && !option.compiledRegex.MatchString(v) {
			return nil, fmt.Errorf("config: value %q of %s failed the validation regex", v, option.Key)
		}
		return &valueCache{stringVal: v}, nil
	case int:
		return validateValue(option, int64(v))
	case int64:
		if option.OptType != OptTypeInt {
			return nil, fmt.Errorf("%w: option %s does not take an int", ErrInvalidOptionType, option.Key)
		}
		if option.compiledRegex != nil && !option.compiledRegex.MatchString(fmt.Sprintf("%d", v)) {
			return nil, fmt.Errorf("config: value %d of %s failed the validation regex", v, option.Key)
		}
		return &valueCache{intVal: v}, nil
	case bool:
		if option.OptType != OptTypeBool {
			return nil, fmt.Errorf("%w: option %s does not take a bool", ErrInvalidOptionType, option.Key)
		}
		return &valueCache{boolVal: v}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidOptionType, value)
	}
}
