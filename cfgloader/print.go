package cfgloader

import (
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/mask"
)

// printConfig logs config with fields tagged `mask:"true"` hidden.
func printConfig(config any) {
	logger.With("config", mask.Fields(config)).Info("loaded config")
}
