package core

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const (
	SettingAdviceURL  = "ADVICE_URL"
	SettingAPODURL    = "NASA_APOD_URL"
	SettingNASAAPIKey = "NASA_API_KEY"
)

// Settings holds the upstream API values read from the .env file. Process
// environment variables take precedence over the file.
type Settings struct {
	v *viper.Viper
}

// LoadSettings reads a dotenv file. A missing file is not an error: every
// lookup then falls through to the environment and fails at first use.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return &Settings{v: v}, nil
}

// NewSettings builds Settings from fixed values, ignoring the environment.
func NewSettings(values map[string]string) *Settings {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return &Settings{v: v}
}

func (s *Settings) Lookup(key string) (string, error) {
	if s == nil || s.v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingSetting, key)
	}
	if !s.v.IsSet(key) {
		return "", fmt.Errorf("%w: %s", ErrMissingSetting, key)
	}
	return s.v.GetString(key), nil
}

// Present reports which of the given keys are set, for `dayview info`.
func (s *Settings) Present(keys ...string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		_, err := s.Lookup(k)
		out[strings.ToUpper(k)] = err == nil
	}
	return out
}
