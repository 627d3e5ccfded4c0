package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/apps/shared"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/bulk"
	"github.com/trezcool/ratiba/core/listview"
	logsvc "github.com/trezcool/ratiba/services/logger"
	metricsvc "github.com/trezcool/ratiba/services/metrics"
	sharesvc "github.com/trezcool/ratiba/services/share"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := logsvc.NewLogger(os.Stdout, conf)

	deps, err := shared.Setup(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up dependencies: %v", err), err)
	}
	defer func() {
		if err = deps.Close(); err != nil {
			logger.Fatal("Failed to close", err)
		}
	}()

	renderer, err := listview.New(listview.ConfigFrom(conf.List))
	if err != nil {
		logger.Fatal(fmt.Sprintf("invalid list geometry: %v", err), err)
	}

	metrics := metricsvc.NewObserver("ratiba")
	shareSvc := sharesvc.NewConsoleService(os.Stdout, conf.AppName, logger)
	bulkSvc := bulk.NewService(deps.Store, deps.Selectors, shareSvc, logger, metrics)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build), map[string]interface{}{"env": conf.Env})
	defer logger.Info("Application stopped")
	defer shareSvc.Wait() // pending digests

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logger,
		Store:     deps.Store,
		Selectors: deps.Selectors,
		Bulk:      bulkSvc,
		Renderer:  renderer,
		Metrics:   metrics.Handler(),
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
