package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	logger "github.com/konstantinfoerster/loco-importer-go/internal/log"
	"github.com/konstantinfoerster/loco-importer-go/internal/updater"
	"github.com/rs/zerolog/log"
)

// Version information, set via -ldflags during build.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	logger.SetupConsoleLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()

	if err != nil {
		// the validation report is already printed
		if !errors.Is(err, updater.ErrValidation) {
			log.Error().Err(err).Msg("loco-importer failed")
		}
		os.Exit(1)
	}
}
