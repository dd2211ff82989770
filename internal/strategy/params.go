package strategy

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// validate checks the coerced parameter structs against their schema tags.
var validate = validator.New()

// intSetting reads an integer setting, falling back to def when absent.
// Coercion failures surface as ErrInvalidSettings.
func intSetting(settings map[string]any, key string, def int) (int, error) {
	v, ok := settings[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number: %v", ErrInvalidSettings, key, err)
	}
	return n, nil
}

// floatSetting reads a float setting, falling back to def when absent.
func floatSetting(settings map[string]any, key string, def float64) (float64, error) {
	v, ok := settings[key]
	if !ok || v == nil {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number: %v", ErrInvalidSettings, key, err)
	}
	return f, nil
}

// stringSetting reads a string setting, falling back to def when absent.
func stringSetting(settings map[string]any, key, def string) (string, error) {
	v, ok := settings[key]
	if !ok || v == nil {
		return def, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s must be a string: %v", ErrInvalidSettings, key, err)
	}
	return s, nil
}

// checkParams validates a filled parameter struct against its schema.
func checkParams(strategyName string, params any) error {
	if err := validate.Struct(params); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, strategyName, err)
	}
	return nil
}
