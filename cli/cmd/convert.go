package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/malusev998/trip-currency/cache"
	"github.com/malusev998/trip-currency/services"
)

// openOnce builds a cache and tries a single refresh. A failed refresh is
// logged by the cache and the fallback snapshot answers instead.
func openOnce(config *Config, cmd *cobra.Command) (*cache.Cache, error) {
	settings, err := loadSettings(config.configFile, nil)
	if err != nil {
		return nil, err
	}

	source, err := config.source(settings)
	if err != nil {
		return nil, err
	}

	rates, err := cache.New(source, config.registry(), cache.WithLogger(config.logger(cmd)))
	if err != nil {
		return nil, err
	}

	_ = rates.Refresh(config.runContext(cmd))

	return rates, nil
}

func convert(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "convert <amount> <from> <to>",
		Short:   "Convert an amount between two supported currencies",
		Example: "trip-currency convert 100 USD IDR",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rates, err := openOnce(config, cmd)
			if err != nil {
				return err
			}
			defer rates.Close()

			display := services.DisplayService{
				Snapshots:  rates,
				Conversion: services.ConversionService{Registry: rates.Registry()},
			}

			snapshot := rates.Current()

			formatted, err := display.ConvertAndFormatFor(args[0], args[1], args[2], snapshot)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s rates, captured %s)\n",
				formatted.From,
				formatted.To,
				snapshot.Origin,
				snapshot.CapturedAt.Format(time.RFC3339),
			)

			return err
		},
	}
}
