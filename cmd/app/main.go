package main

import (
	"context"
	"fmt"
	"os"

	"bus-fleet/internal/config"
	"bus-fleet/internal/mylogger"
	trackingservice "bus-fleet/internal/tracking-service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: app tracking-service")
		os.Exit(1)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	mylog, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "tracking-service":
		if err := trackingservice.Execute(context.Background(), mylog, cfg); err != nil {
			mylog.Error("tracking-service exited with error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown service %q\n", os.Args[1])
		os.Exit(1)
	}
}
