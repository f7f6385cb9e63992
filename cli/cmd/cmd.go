package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/fetchers"
)

type (
	Config struct {
		Ctx      context.Context
		Registry *currency.Registry
		// Source replaces the configured provider when set.
		Source     currency.RateSource
		debug      bool
		configFile string
	}
)

func Execute(config *Config) error {
	return NewRootCommand(config).Execute()
}

func NewRootCommand(config *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "trip-currency",
		Short:        "Currency exchange rates for trip expenses",
		Version:      "v2.0.0",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&config.debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().StringVar(&config.configFile, "config", "./config.yml", "Path to config file")

	rootCmd.AddCommand(serve(config), convert(config), rates(config))

	return rootCmd
}

func (c *Config) runContext(cmd *cobra.Command) context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}

	return cmd.Context()
}

func (c *Config) registry() *currency.Registry {
	if c.Registry == nil {
		c.Registry = currency.DefaultRegistry()
	}

	return c.Registry
}

func (c *Config) logger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.InfoLevel)

	if c.debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

func (c *Config) source(settings Settings) (currency.RateSource, error) {
	if c.Source != nil {
		return c.Source, nil
	}

	base := fetchers.BaseConfig{Registry: c.registry()}

	switch settings.Provider {
	case currency.StaticProvider:
		return fetchers.NewRateSource(settings.Provider, fetchers.StaticConfig{BaseConfig: base})
	default:
		return fetchers.NewRateSource(settings.Provider, fetchers.ExchangeRateAPIConfig{
			BaseConfig: base,
			URL:        settings.URL,
			Timeout:    settings.Timeout,
		})
	}
}
