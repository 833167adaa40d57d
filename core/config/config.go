package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParse is returned when environment variables cannot be parsed into the
// target struct.
var ErrParse = errors.New("config: failed to parse environment")

var (
	loadDotEnv sync.Once
	cache      sync.Map // reflect.Type -> parsed struct value
)

// Load parses environment variables into cfg. The first call for a given
// struct type does the parsing; later calls return the cached result, so
// every consumer of the same config type observes identical values.
// A missing .env file is not an error.
func Load[T any](cfg *T) error {
	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*cfg)
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}

	cache.Store(key, *cfg)
	return nil
}

// MustLoad is Load that panics on failure. Useful at startup where a
// missing required variable should halt the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
