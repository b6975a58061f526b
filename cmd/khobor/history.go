package main

import (
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/Adda-Baaj/khobor-desk/internal/render"
	"github.com/Adda-Baaj/khobor-desk/internal/store"
)

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List journaled notifications, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "journal", Usage: "Notification journal file"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Number of entries, 0 for all"},
		},
		Action: func(c *cli.Context) error {
			rt, err := fromContext(c)
			if err != nil {
				return err
			}
			path := rt.cfg.Store.Path
			if c.IsSet("journal") {
				path = c.String("journal")
			}
			if path == "" {
				return errors.New("no journal configured; set store.path or --journal")
			}

			j, err := store.Open(path)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.List()
			if err != nil {
				return err
			}
			entries = lo.Reverse(entries)
			if limit := c.Int("limit"); limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			now := time.Now()
			for _, e := range entries {
				printf(c, "%-10s %s\n           %s\n", render.TimeAgo(e.SeenAt, now), e.Item.Title, e.Item.URL)
			}
			if len(entries) == 0 {
				printf(c, "No notifications journaled yet.\n")
			}
			return nil
		},
	}
}
