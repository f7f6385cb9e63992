package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/cache"
	"github.com/malusev998/trip-currency/fetchers"
)

const envPrefix = "TRIP_CURRENCY"

type (
	Settings struct {
		Provider        currency.Provider
		URL             string
		Timeout         time.Duration
		RefreshInterval time.Duration
		HTTPAddr        string
	}

	fileConfig struct {
		Provider currency.Provider `mapstructure:"provider"`
		Fetchers struct {
			ExchangeRateAPI struct {
				URL     string        `mapstructure:"url"`
				Timeout time.Duration `mapstructure:"timeout"`
			} `mapstructure:"exchangerateapi"`
		} `mapstructure:"fetchers"`
		Refresh struct {
			Interval time.Duration `mapstructure:"interval"`
		} `mapstructure:"refresh"`
		HTTP struct {
			Addr string `mapstructure:"addr"`
		} `mapstructure:"http"`
	}
)

// loadSettings reads .env, the config file and TRIP_CURRENCY_* variables, in
// that order of increasing priority. Flags registered on the command under
// the same key take priority over all of them.
func loadSettings(configFile string, flags map[string]*pflag.Flag) (Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("provider", "exchangerateapi")
	v.SetDefault("fetchers.exchangerateapi.url", fetchers.ExchangeRateAPIURL)
	v.SetDefault("fetchers.exchangerateapi.timeout", fetchers.DefaultTimeout)
	v.SetDefault("refresh.interval", cache.DefaultInterval)
	v.SetDefault("http.addr", ":8080")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return Settings{}, err
		}
	}

	if configFile != "" {
		absolutePath, err := filepath.Abs(configFile)
		if err != nil {
			return Settings{}, err
		}

		v.SetConfigFile(absolutePath)

		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("error while reading config file %s: %w", absolutePath, err)
		}
	}

	var file fileConfig

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))

	if err := v.Unmarshal(&file, decodeHook); err != nil {
		return Settings{}, fmt.Errorf("error while decoding config: %w", err)
	}

	settings := Settings{
		Provider:        file.Provider,
		URL:             file.Fetchers.ExchangeRateAPI.URL,
		Timeout:         file.Fetchers.ExchangeRateAPI.Timeout,
		RefreshInterval: file.Refresh.Interval,
		HTTPAddr:        file.HTTP.Addr,
	}

	if settings.Timeout <= 0 {
		return Settings{}, fmt.Errorf("fetchers.exchangerateapi.timeout must be positive, got %s", settings.Timeout)
	}

	if settings.RefreshInterval <= 0 {
		return Settings{}, fmt.Errorf("refresh.interval must be positive, got %s", settings.RefreshInterval)
	}

	return settings, nil
}
