package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/console"
	"github.com/matheus3301/botadmin/internal/lock"
	"github.com/matheus3301/botadmin/internal/tui"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	params, err := console.LoadParams(*profileFlag, "botadmin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	params.Exclusive = true

	var (
		st     *console.State
		logger *zap.Logger
	)
	app := console.App(params, fx.Populate(&st, &logger))
	if err := app.Err(); err != nil {
		exitStartup(params.Profile, err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		exitStartup(params.Profile, err)
	}

	runErr := tui.NewApp(st, params.Config.Server.APIURL, logger).Run()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

func exitStartup(profileName string, err error) {
	if lock.IsHeld(err) {
		fmt.Fprintf(os.Stderr, "profile %q is already open: %v\n", profileName, err)
	} else {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
	}
	os.Exit(1)
}
