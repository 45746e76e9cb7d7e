// Command storefront serves the marketplace's browser client
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itsneelabh/storefront"
	"github.com/itsneelabh/storefront/core"
)

func main() {
	configFile := flag.String("config", "", "optional YAML or JSON config file")
	envFile := flag.String("env", "", "optional .env file (defaults to ./.env when present)")
	flag.Parse()

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	if err := core.LoadDotEnv(envFiles...); err != nil {
		return err
	}

	var opts []core.Option
	if configFile != "" {
		opts = append(opts, core.WithConfigFile(configFile))
	}
	cfg, err := core.NewConfig(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := core.NewProductionLogger(cfg.Logging, cfg.Name)
	app, err := storefront.New(ctx, cfg, storefront.WithLogger(logger))
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
