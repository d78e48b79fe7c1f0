package vm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape accepted by OptionsFromFile: a typed
// config struct consumed by a constructor, covering scheduler count,
// reduction quantum size, and spawn-routing policy.
type fileConfig struct {
	Schedulers int    `yaml:"schedulers"`
	Quantum    int    `yaml:"quantum"`
	Routing    string `yaml:"routing"`
}

// OptionsFromFile loads VM configuration from a YAML file and returns the
// Option(s) needed to apply it, for use by cmd/lam's "run --config" flag.
func OptionsFromFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vm: read config %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("vm: parse config %s: %w", path, err)
	}
	var opts []Option
	if cfg.Schedulers > 0 {
		opts = append(opts, WithSchedulers(cfg.Schedulers))
	}
	if cfg.Quantum > 0 {
		opts = append(opts, WithQuantum(cfg.Quantum))
	}
	if cfg.Routing != "" {
		router, err := routerNamed(cfg.Routing)
		if err != nil {
			return nil, fmt.Errorf("vm: parse config %s: %w", path, err)
		}
		opts = append(opts, WithRouter(router))
	}
	return opts, nil
}

// routerNamed maps a config file's "routing" string onto a Router, the
// same way the rest of fileConfig maps plain scalars onto Options.
func routerNamed(name string) (Router, error) {
	switch name {
	case "scheduler0":
		return Scheduler0Router, nil
	case "round-robin":
		return RoundRobinRouter, nil
	default:
		return nil, fmt.Errorf("vm: unknown routing policy %q", name)
	}
}
