package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/malusev998/trip-currency/cache"
	"github.com/malusev998/trip-currency/httpapi"
	"github.com/malusev998/trip-currency/metrics"
)

const shutdownTimeout = 5 * time.Second

func serveCobraCommand(config *Config) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(config.configFile, map[string]*pflag.Flag{
			"http.addr":        cmd.Flags().Lookup("addr"),
			"refresh.interval": cmd.Flags().Lookup("interval"),
		})
		if err != nil {
			return err
		}

		logger := config.logger(cmd)

		source, err := config.source(settings)
		if err != nil {
			return err
		}

		rates, err := cache.Open(source, config.registry(),
			cache.WithLogger(logger),
			cache.WithInterval(settings.RefreshInterval),
			cache.WithMetrics(metrics.Collector{}),
		)
		if err != nil {
			return err
		}
		defer rates.Close()

		if !config.debug {
			gin.SetMode(gin.ReleaseMode)
		}

		server := &http.Server{
			Addr:              settings.HTTPAddr,
			Handler:           httpapi.NewRouter(rates, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errs := make(chan error, 1)

		go func() {
			logger.WithField("addr", settings.HTTPAddr).Info("http server listening")
			errs <- server.ListenAndServe()
		}()

		select {
		case err := <-errs:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}

			return err
		case <-config.runContext(cmd).Done():
		}

		logger.Info("shutting down http server")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(ctx)
	}
}

func serve(config *Config) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep rates fresh in the background and serve them over HTTP",
		Args:  cobra.NoArgs,
	}

	serveCmd.RunE = serveCobraCommand(config)
	serveCmd.Flags().String("addr", ":8080", "HTTP listen address")
	serveCmd.Flags().Duration("interval", cache.DefaultInterval, "Rate refresh interval")

	return serveCmd
}
