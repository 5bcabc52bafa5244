package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/viant/credman"
	"github.com/viant/credman/internal/logger"
)

func main() {
	if err := credman.Run(os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		logger.Get().Error().Err(err).Msg("credential manager failed")
		os.Exit(1)
	}
}
