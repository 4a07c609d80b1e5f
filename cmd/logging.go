package cmd

import (
	"github.com/lunex-engine/rtscene/log"
	"github.com/urfave/cli"
)

var logger = log.New("rtscene")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// Apply a configured level unless a verbosity flag was given.
func applyLogLevel(ctx *cli.Context, name string) error {
	if ctx.GlobalBool("v") || ctx.GlobalBool("vv") || name == "" {
		return nil
	}

	level, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}
