// Package config loads the service configuration from a YAML or JSON file
// with DF_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/core/optimizer"
	"github.com/kilianp07/dockflow/core/planlog"
	"github.com/kilianp07/dockflow/infra/gbfs"
	"github.com/kilianp07/dockflow/infra/logger"
	"github.com/kilianp07/dockflow/infra/monitoring"
	"github.com/kilianp07/dockflow/infra/mqtt"
)

// EnvPrefix marks environment overrides. DF_PLANNER__TRUCKS=3 sets
// planner.trucks.
const EnvPrefix = "DF_"

type Config struct {
	Store   StoreConfig       `json:"store"`
	Feed    gbfs.Config       `json:"feed"`
	Planner optimizer.Config  `json:"planner"`
	Metrics metrics.Config    `json:"metrics"`
	MQTT    mqtt.Config       `json:"mqtt"`
	PlanLog planlog.Config    `json:"plan_log"`
	Sentry  monitoring.Config `json:"sentry"`
	API     APIConfig         `json:"api"`
	Log     logger.Options    `json:"log"`
}

// Load reads path, applies environment overrides, defaults and validation.
// An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Store.SetDefaults()
	c.Feed.SetDefaults()
	c.Planner.SetDefaults()
	c.MQTT.SetDefaults()
	c.PlanLog.SetDefaults()
	c.API.SetDefaults()
}

// Validate reports every invalid section at once.
func (c Config) Validate() error {
	var errs []error
	for _, v := range []interface{ Validate() error }{c.Store, c.Planner, c.MQTT, c.PlanLog, c.Log} {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Feed.StationInformationURL == "" || c.Feed.StationStatusURL == "" {
		errs = append(errs, errors.New("feed: station_information_url and station_status_url are required"))
	}
	if c.Sentry.TracesSampleRate < 0 || c.Sentry.TracesSampleRate > 1 {
		errs = append(errs, errors.New("sentry: traces_sample_rate must be within [0,1]"))
	}
	return errors.Join(errs...)
}
