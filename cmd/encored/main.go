// Command encored runs the encore daemon: it watches the configured track
// sources and fulfills crowd song requests as their songs play.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"encore/internal/config"
	"encore/internal/daemon"
)

func main() {
	var configPath string
	var logLevel string
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemon.Run(context.Background(), cfg, daemon.RunOptions{LogLevel: logLevel}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
