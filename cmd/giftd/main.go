package main

import (
	"flag"
	"fmt"
	"os"

	"giftd/internal/di"
	"giftd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "duplicate logs to the console")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "giftd: %s\n", err)
		os.Exit(1)
	}
}
