package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadInternalConfig starts from the environment defaults and overlays any
// keys set on v (config file, bound flags), e.g. "clinic_api.base_url".
func LoadInternalConfig(v *viper.Viper) (*InternalConfig, error) {
	cfg := NewInternalConfig()

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
