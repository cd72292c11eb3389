package main

import (
	"context"
	"github.com/litetable/litetable-scan/internal/cli"
	"github.com/rs/zerolog/log"
	"os"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("tabletscan failed")
		os.Exit(1)
	}
}
