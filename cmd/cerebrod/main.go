// Command cerebrod runs the cerebro monitoring daemon in the foreground.
// It is normally launched detached by `cerebro start` but can be run
// directly for debugging.
package main

import (
	"context"
	"flag"
	"log"

	"cerebro/internal/config"
	"cerebro/internal/daemonrun"
)

func main() {
	socketFlag := flag.String("socket", "", "Path to the daemon control socket")
	configFlag := flag.String("config", "", "Configuration file path")
	logLevelFlag := flag.String("log-level", "", "Override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		SocketPath: *socketFlag,
		LogLevel:   *logLevelFlag,
	}); err != nil {
		log.Fatalf("run daemon: %v", err)
	}
}
