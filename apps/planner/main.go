package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/ratiba/apps/shared"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/bulk"
	"github.com/trezcool/ratiba/core/listview"
	logsvc "github.com/trezcool/ratiba/services/logger"
	sharesvc "github.com/trezcool/ratiba/services/share"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)
	logger := logsvc.NewLogger(os.Stderr, conf) // stdout is for reports

	ctx := context.Background()
	deps, err := shared.Setup(ctx, conf, logger)
	errAndDie(err)

	renderer, err := listview.New(listview.ConfigFrom(conf.List))
	errAndDie(err)

	shareSvc := sharesvc.NewConsoleService(os.Stdout, conf.AppName, logger)
	cli := commandLine{
		deps:     deps,
		bulk:     bulk.NewService(deps.Store, deps.Selectors, shareSvc, logger, nil),
		renderer: renderer,
		out:      os.Stdout,
	}
	err = cli.run(ctx, os.Args)
	shareSvc.Wait()
	_ = deps.Close()
	if err != nil {
		if err != errHelp {
			log.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
