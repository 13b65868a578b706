// Package main runs the interactive account manager shell.
package main

import (
	"cmp"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/atinyakov/AccountKeeper/internal/app"
	"github.com/atinyakov/AccountKeeper/internal/client/shell"
	"github.com/atinyakov/AccountKeeper/internal/config"
	"github.com/atinyakov/AccountKeeper/internal/logger"
)

var (
	version   string
	buildDate string
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("AccountKeeper Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	options, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	a, err := app.Open(options, log.Log)
	if err != nil {
		log.Log.Fatal("cannot open account store", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Log.Error("failed to close storage", zap.Error(err))
		}
	}()

	if err := shell.New(a.Store, os.Stdin, os.Stdout).Run(); err != nil {
		log.Log.Error("shell stopped", zap.Error(err))
	}
}
