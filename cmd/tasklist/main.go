package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasklist/internal/cli"
	"github.com/Makepad-fr/tasklist/internal/config"
	"github.com/Makepad-fr/tasklist/internal/logging"
	"github.com/Makepad-fr/tasklist/internal/persist"
	"github.com/Makepad-fr/tasklist/internal/store"
	"github.com/Makepad-fr/tasklist/internal/store/jsonstore"
	"github.com/Makepad-fr/tasklist/internal/store/sqlitestore"
	"github.com/Makepad-fr/tasklist/internal/todostore"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }

	cfg, args, err := config.Load(fs, argv)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	// The TUI owns the terminal, so logs only go to an explicit file there.
	interactive := len(args) == 0 || args[0] == "ui"
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Quiet:  interactive,
	})
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer closeLog()
	log.SetDefault(logger)

	kv, err := openBackend(cfg)
	if err != nil {
		logger.Error("open storage", "backend", cfg.Backend, "err", err)
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Warn("close storage", "err", err)
		}
	}()
	logger.Debug("storage ready", "backend", cfg.Backend, "slot", cfg.Slot, "config", cfg.ConfigFile)

	s := todostore.New(persist.New(kv, cfg.Slot, logger), todostore.WithLogger(logger))

	// Hand the remaining args to the CLI runner.
	code := cli.Run(args, cli.Options{
		Store: s,
		Group: cfg.Group,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}

func openBackend(cfg *config.Config) (store.KV, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlitestore.New(cfg.DBPath())
	case config.BackendMemory:
		return store.NewMemory(), nil
	default:
		return jsonstore.New(cfg.DataDir)
	}
}
