package app

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"
	"github.com/xsj0jsx/thin"
	"github.com/xsj0jsx/thin/listener"
)

const (
	configPathLog       = "log"
	configPathListeners = "listeners"
)

// unmarshalWith decodes onto out, keeping the values already in out for
// missing keys. Unknown keys are rejected.
func unmarshalWith(k *koanf.Koanf, path string, out any) error {
	err := k.UnmarshalWithConf(path, out, koanf.UnmarshalConf{
		Tag: "toml",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return fmt.Errorf("config unmarshal %s. %w", path, err)
	}
	return nil
}

////

type LogConfig struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Format: "text",
		Level:  "info",
	}
}

////

type ListenerConfig struct {
	Address    string `toml:"address"`
	Protocol   string `toml:"protocol"`
	TcpNoDelay bool   `toml:"tcp_no_delay"`
	IPv6Only   bool   `toml:"ipv6_only"`
	Backlog    int    `toml:"backlog"`
}

func DefaultListenerConfig() ListenerConfig {
	defaults := listener.DefaultOptions()
	return ListenerConfig{
		Protocol:   defaults.Protocol,
		TcpNoDelay: defaults.TcpNoDelay,
		IPv6Only:   defaults.IPv6Only,
		Backlog:    defaults.Backlog,
	}
}

func (c ListenerConfig) Options() []listener.Option {
	return []listener.Option{
		listener.WithProtocol(c.Protocol),
		listener.WithTcpNoDelay(c.TcpNoDelay),
		listener.WithIPv6Only(c.IPv6Only),
		listener.WithBacklog(c.Backlog),
	}
}

func loadLogConfig(ctx context.Context) (LogConfig, error) {
	config := DefaultLogConfig()
	k := thin.Configer(ctx)
	if !k.Exists(configPathLog) {
		return config, nil
	}
	return config, unmarshalWith(k, configPathLog, &config)
}

func loadListenerConfigs(ctx context.Context) ([]ListenerConfig, error) {
	k := thin.Configer(ctx)
	sections := k.Slices(configPathListeners)
	configs := make([]ListenerConfig, 0, len(sections))
	for i, section := range sections {
		config := DefaultListenerConfig()
		if err := unmarshalWith(section, "", &config); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", configPathListeners, i, err)
		}
		if config.Address == "" {
			return nil, fmt.Errorf("%s[%d]: address is required", configPathListeners, i)
		}
		configs = append(configs, config)
	}
	return configs, nil
}
