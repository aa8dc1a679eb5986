// Package config loads the relay's TOML configuration, following
// cmd/gate/gate.go's viper.Unmarshal composition, generalized with the
// default-path + CONFIG_PATH + write-default-if-missing flow from
// original_source/src/config.rs:read_config.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const defaultConfigPath = "config.toml"

// Duration wraps time.Duration with text (de)serialization so both the
// TOML writer and viper's decode hook can round-trip humantime-style
// strings like "60s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type NetConfig struct {
	Address              string `mapstructure:"address" toml:"address"`
	CertFile             string `mapstructure:"cert_file" toml:"cert_file,omitempty"`
	KeyFile              string `mapstructure:"key_file" toml:"key_file,omitempty"`
	MaxConnectsPerMinute int    `mapstructure:"max_connects_per_min" toml:"max_connects_per_min"`
}

type MessageConfig struct {
	MaxLength     int      `mapstructure:"max_length" toml:"max_length"`
	MaxMessages   int      `mapstructure:"max_messages" toml:"max_messages"`
	CountDuration Duration `mapstructure:"count_duration" toml:"count_duration"`
}

type ModerationConfig struct {
	Moderators string `mapstructure:"moderators" toml:"moderators"`
	Banned     string `mapstructure:"banned" toml:"banned"`
}

type AuthConfig struct {
	KeyFile   string   `mapstructure:"key_file" toml:"key_file"`
	Algorithm string   `mapstructure:"algorithm" toml:"algorithm"`
	ValidTime Duration `mapstructure:"valid_time" toml:"valid_time"`
}

// Config is the root of the TOML document.
type Config struct {
	Net        NetConfig        `mapstructure:"net" toml:"net"`
	Message    MessageConfig    `mapstructure:"message" toml:"message"`
	Moderation ModerationConfig `mapstructure:"moderation" toml:"moderation"`
	Auth       *AuthConfig      `mapstructure:"auth" toml:"auth,omitempty"`
	Debug      bool             `mapstructure:"debug" toml:"debug"`
}

// Default returns the configuration written out when no config file exists.
func Default() Config {
	return Config{
		Net: NetConfig{
			Address:              "127.0.0.1:8080",
			MaxConnectsPerMinute: 120,
		},
		Message: MessageConfig{
			MaxLength:     100,
			MaxMessages:   40,
			CountDuration: Duration(60 * time.Second),
		},
		Moderation: ModerationConfig{
			Moderators: "moderators.txt",
			Banned:     "banned.txt",
		},
	}
}

// Load reads the config at CONFIG_PATH (default "config.toml"), writing
// and using the default configuration if no file exists there yet.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := writeDefault(path, &cfg); err != nil {
			return nil, fmt.Errorf("write default config to %q: %w", path, err)
		}
		return &cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat config file %q: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg := Default()
	hook := mapstructure.ComposeDecodeHookFunc(
		stringToConfigDuration(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("unmarshal config %q: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func stringToConfigDuration() mapstructure.DecodeHookFunc {
	durationType := reflect.TypeOf(Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != durationType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", s, err)
		}
		return Duration(parsed), nil
	}
}

func writeDefault(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects configurations that would fail at startup rather than
// mid-run.
func Validate(cfg *Config) error {
	if cfg.Net.Address == "" {
		return errors.New("net.address must be set")
	}
	if (cfg.Net.CertFile == "") != (cfg.Net.KeyFile == "") {
		return errors.New("net.cert_file and net.key_file must be set together")
	}
	if cfg.Message.MaxLength <= 0 {
		return errors.New("message.max_length must be positive")
	}
	if cfg.Message.MaxMessages <= 0 {
		return errors.New("message.max_messages must be positive")
	}
	if cfg.Message.CountDuration <= 0 {
		return errors.New("message.count_duration must be positive")
	}
	if cfg.Moderation.Moderators == "" || cfg.Moderation.Banned == "" {
		return errors.New("moderation.moderators and moderation.banned must be set")
	}
	if cfg.Auth != nil {
		if cfg.Auth.KeyFile == "" {
			return errors.New("auth.key_file must be set")
		}
		if cfg.Auth.Algorithm == "" {
			return errors.New("auth.algorithm must be set")
		}
		if cfg.Auth.ValidTime <= 0 {
			return errors.New("auth.valid_time must be positive")
		}
	}
	return nil
}
