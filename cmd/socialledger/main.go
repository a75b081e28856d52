// Package main runs one social ledger command and prints its JSON result.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	socialledgercmd "github.com/louisbranch/socialledger/internal/cmd/socialledger"
	"github.com/louisbranch/socialledger/internal/platform/config"
)

func main() {
	cfg, err := socialledgercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitCodef(2, "Error: %v", err)
	}
	log.SetPrefix("[SOCIALLEDGER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := socialledgercmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		config.ExitCodef(socialledgercmd.ExitCode(err), "Error: %v", err)
	}
}
