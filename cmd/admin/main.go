package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/minibi/internal/admin"
	"github.com/dmitrijs2005/minibi/internal/flagx"
	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	zl, err := logging.NewZap(cfg.LogLevel, cfg.LogProduction)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()

	app, err := admin.NewApp(ctx, cfg, logging.NewZapLogger(zl), os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = app.Run(ctx, flagx.Positional(os.Args[1:], config.ValueFlags))
	_ = app.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, admin.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}

}
