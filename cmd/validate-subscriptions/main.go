package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/kbridge/config"
	"github.com/Gunvolt24/kbridge/pkg/validate"
)

// CLI-приложение для проверки манифеста подписок.
func main() {
	_ = godotenv.Load(".env.local")

	inputPath := flag.String("in", "", "path to subscriptions manifest (.yaml or .json); default: KBRIDGE_SUBSCRIPTIONS_FILE")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	path := *inputPath
	if path == "" {
		path = cfg.Subscriptions.File
	}

	summary, err := validate.ValidateFile(path, cfg.Adapter.Defaults(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v\n", err)
		os.Exit(1)
	}
	if summary.Invalid > 0 {
		fmt.Fprintf(os.Stderr, "validation failed (%s)\n", summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
