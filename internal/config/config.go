// Package config loads the environment-variable overrides honored by the
// sif driver before flag parsing runs (SPEC_FULL.md's Configuration
// section). The teacher never has an analogous package of its own — its
// mainer.Parser reads env vars directly into Cmd fields via the same
// "flag" struct tags used for CLI flags — but caarlos0/env/v6 is already a
// dependency of the pack (pulled in indirectly through mainer), so sif
// promotes it to a direct, exercised one here rather than leaving it
// unwired.
package config

import "github.com/caarlos0/env/v6"

// Env holds the environment-variable overrides for the VM's initial
// resource sizing. Both are optional; zero means "let the driver's default
// or CLI flag decide" (lang/vm.Thread already treats <= 0 as "use the
// built-in default and grow geometrically from there").
type Env struct {
	HeapSize int `env:"SIF_HEAP_SIZE" envDefault:"0"`
	RegCount int `env:"SIF_REG_COUNT" envDefault:"0"`
}

// Load reads SIF_HEAP_SIZE and SIF_REG_COUNT from the process environment.
func Load() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
