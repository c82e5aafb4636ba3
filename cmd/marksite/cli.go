package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dkarlsen/marksite/internal/config"
	"github.com/dkarlsen/marksite/internal/logger"
	"github.com/dkarlsen/marksite/internal/site"
	"github.com/dkarlsen/marksite/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "marksite",
		Usage:   "Markdown content site server",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(),
			checkCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// siteFlags are shared by every command that constructs the site.
func siteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "site.yml", Usage: "Path to the site config file"},
		&cli.StringFlag{Name: "bind", Usage: "Override the listen address"},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Override the listen port"},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "Local authoring mode: no cache persistence, blog content from disk"},
		&cli.StringFlag{Name: "content-dir", Usage: "Override the local blog content directory"},
	}
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("bind") {
		cfg.Server.Bind = c.String("bind")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.Bool("debug") {
		cfg.Server.Debug = true
	}
	if c.IsSet("content-dir") {
		cfg.Server.ContentDir = c.String("content-dir")
	}
	return cfg, nil
}

// serveCmd creates the serve command.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Preload the article index and serve the site",
		Flags: siteFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Server.Debug)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s, err := site.New(c.Context, cfg, log)
			if err != nil {
				return err
			}

			return web.Run(web.NewServer(s), log)
		},
	}
}

// checkCmd creates the check command: load the config, run the preload once,
// and report the article index without serving.
func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate the config and preload the article index without serving",
		Flags: siteFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Server.Debug)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s, err := site.New(c.Context, cfg, log)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "config ok: %d pages, %d articles\n",
				len(cfg.Pages), s.Articles.Len())
			for _, a := range s.Articles.All() {
				fmt.Fprintf(c.App.Writer, "  %-24s %s (%d words)\n", a.Slug, a.Title, a.Words)
			}
			return nil
		},
	}
}
