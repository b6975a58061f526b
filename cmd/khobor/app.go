package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Adda-Baaj/khobor-desk/internal/config"
	"github.com/Adda-Baaj/khobor-desk/internal/logger"
	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

const runtimeKey = "khobor.runtime"

// runtime is the state shared by every command once flags and config are
// resolved.
type runtime struct {
	cfg    config.Config
	log    logger.Logger
	client httpclient.Client
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "khobor",
		Usage: "A live news desk for the terminal",
		Description: `Follows a news feed, keeps a deduplicated list of recent
notifications and reads article summaries aloud. Also drives the
dashboard's email agent, data upload and education assistant.

Settings come from khobor.yaml, KHOBOR_* environment variables (a .env
file is loaded first) and flags, e.g.:

--base-url => KHOBOR_BACKEND_BASE_URL=http://localhost:5000
news.poll_interval => KHOBOR_NEWS_POLL_INTERVAL=90s`,
		Metadata: map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"KHOBOR_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Environment file loaded before reading settings",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Dashboard backend base URL",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (console, json)",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			watchCmd(),
			searchCmd(),
			agentCmd(),
			uploadCmd(),
			askCmd(),
			historyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			return cli.ShowAppHelp(ctx)
		},
	}
}

func setup(ctx *cli.Context) error {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"base-url":   "backend.base_url",
		"log-level":  "log.level",
		"log-format": "log.format",
	} {
		if ctx.IsSet(flag) {
			overrides[key] = ctx.String(flag)
		}
	}

	cfg, err := config.Load(config.Options{
		File:      ctx.String("config"),
		EnvFile:   ctx.String("env-file"),
		Overrides: overrides,
	})
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	ctx.App.Metadata[runtimeKey] = &runtime{
		cfg:    cfg,
		log:    log,
		client: httpclient.NewRestyClient(cfg.Backend.Timeout),
	}
	return nil
}

func teardown(ctx *cli.Context) error {
	rt, ok := ctx.App.Metadata[runtimeKey].(*runtime)
	if !ok {
		return nil
	}
	_ = rt.log.Sync()
	return nil
}

func fromContext(ctx *cli.Context) (*runtime, error) {
	rt, ok := ctx.App.Metadata[runtimeKey].(*runtime)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return rt, nil
}

// printf writes command output to the app's writer.
func printf(ctx *cli.Context, format string, args ...any) {
	fmt.Fprintf(ctx.App.Writer, format, args...)
}
