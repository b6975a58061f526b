package main

import (
	"encoding/json"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Adda-Baaj/khobor-desk/internal/feed"
	"github.com/Adda-Baaj/khobor-desk/internal/render"
)

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Fetch one page of articles and print it",
		ArgsUsage: "[text...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Usage: "Comma separated source country codes"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of articles to request"},
			&cli.BoolFlag{Name: "json", Usage: "Print articles as JSON lines"},
		},
		Action: func(c *cli.Context) error {
			rt, err := fromContext(c)
			if err != nil {
				return err
			}
			source, err := rt.newSource(rt.cfg)
			if err != nil {
				return err
			}

			q := defaultQuery(rt.cfg)
			if text := strings.TrimSpace(strings.Join(c.Args().Slice(), " ")); text != "" {
				q.Text = text
			}
			if c.IsSet("region") {
				q.Region = c.String("region")
			}
			if c.IsSet("limit") {
				q.PageSize = c.Int("limit")
			}

			if c.Bool("json") {
				items, err := source.Fetch(c.Context, q)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(c.App.Writer)
				for _, item := range items {
					if err := enc.Encode(item); err != nil {
						return err
					}
				}
				return nil
			}

			term := render.NewTerminal(c.App.Writer, 0)
			ctrl, err := feed.New(feed.Options{
				Source:       source,
				Renderer:     term,
				Logger:       rt.log,
				Limit:        q.PageSize,
				DefaultQuery: defaultQuery(rt.cfg),
			})
			if err != nil {
				return err
			}
			defer ctrl.Close()

			return ctrl.FetchAndApply(c.Context, q, true)
		},
	}
}
