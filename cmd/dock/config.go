package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tikz/dock/engine"
)

// envPrefix is the environment variable prefix for all settings,
// e.g. DOCK_ENGINE_PATH overrides engine.path.
const envPrefix = "DOCK"

// options carries global flags and the resolved configuration.
type options struct {
	configPath string
	enginePath string
	verbose    bool

	engineCfg engine.Config
}

// load resolves the engine configuration from the config file, DOCK_*
// environment variables and command line flags, in increasing precedence.
func (o *options) load() error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("engine.path", "vina")
	v.SetDefault("engine.workdir", "")
	v.SetDefault("engine.timeout", engine.DefaultTimeout)

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %q: %v", o.configPath, err)
		}
	}

	o.engineCfg = engine.Config{
		EnginePath: v.GetString("engine.path"),
		WorkDir:    v.GetString("engine.workdir"),
		Timeout:    v.GetDuration("engine.timeout"),
	}
	if o.enginePath != "" {
		o.engineCfg.EnginePath = o.enginePath
	}
	if o.engineCfg.Timeout <= 0 {
		o.engineCfg.Timeout = 60 * time.Second
	}

	return nil
}
