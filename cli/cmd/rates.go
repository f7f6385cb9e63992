package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/malusev998/trip-currency/services"
)

func rates(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rates [base]",
		Short: "Print the value of one unit of base in every supported currency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openOnce(config, cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			registry := c.Registry()
			base := registry.Base()

			if len(args) == 1 {
				from, err := registry.Lookup(args[0])
				if err != nil {
					return err
				}

				base = from.Code
			}

			display := services.DisplayService{
				Snapshots:  c,
				Conversion: services.ConversionService{Registry: registry},
			}

			snapshot := c.Current()

			formatted, err := display.DisplayMatrixFor(base, snapshot)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "1 %s (%s rates, captured %s)\n", base, snapshot.Origin, snapshot.CapturedAt.Format(time.RFC3339))

			for _, code := range registry.Codes() {
				if code == base {
					continue
				}

				fmt.Fprintf(out, "%s\t%s\n", code, formatted[code])
			}

			return nil
		},
	}
}
