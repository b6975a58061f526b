package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func uploadCmd() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a CSV or XLSX file for analysis",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("Please select a file first.")
			}
			client, err := dashboardClient(c)
			if err != nil {
				return err
			}
			res, err := client.UploadFile(c.Context, path)
			if err != nil {
				return fmt.Errorf("Error: %w", err)
			}
			rt, _ := fromContext(c)
			printf(c, "Success! File '%s' uploaded (%d rows, %d columns).\nCleaner: %s%s\n",
				res.Filename, res.Rows, res.Columns, rt.cfg.Backend.BaseURL, res.CleanerPath)
			return nil
		},
	}
}

func askCmd() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the education assistant a question",
		ArgsUsage: "<question...>",
		Action: func(c *cli.Context) error {
			client, err := dashboardClient(c)
			if err != nil {
				return err
			}
			answer, err := client.Ask(c.Context, strings.Join(c.Args().Slice(), " "))
			if err != nil {
				return fmt.Errorf("Failed to get answer: %w", err)
			}
			printf(c, "AI: %s\n", answer)
			return nil
		},
	}
}
