package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := &cmd.Config{
		Ctx:      ctx,
		Registry: currency.DefaultRegistry(),
	}

	if err := cmd.Execute(config); err != nil {
		stop()
		os.Exit(1)
	}
}
