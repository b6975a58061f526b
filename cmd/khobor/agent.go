package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/Adda-Baaj/khobor-desk/internal/dashboard"
	"github.com/Adda-Baaj/khobor-desk/internal/render"
)

func agentCmd() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Control the email agent",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the agent status",
				Action: agentStatus,
			},
			{
				Name:  "start",
				Usage: "Start monitoring the inbox",
				Action: func(c *cli.Context) error {
					return agentCommand(c, (*dashboard.Client).Start)
				},
			},
			{
				Name:  "stop",
				Usage: "Stop monitoring the inbox",
				Action: func(c *cli.Context) error {
					return agentCommand(c, (*dashboard.Client).Stop)
				},
			},
			{
				Name:  "logs",
				Usage: "Show recent agent activity",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: dashboard.DefaultLogLimit, Usage: "Number of entries"},
				},
				Action: agentLogs,
			},
			{
				Name:   "drafts",
				Usage:  "List drafts awaiting approval",
				Action: agentDrafts,
			},
			{
				Name:      "approve",
				Usage:     "Approve and send a draft",
				ArgsUsage: "<draft-id>",
				Action: func(c *cli.Context) error {
					return draftAction(c, dashboard.ActionApprove)
				},
			},
			{
				Name:      "reject",
				Usage:     "Reject a draft",
				ArgsUsage: "<draft-id>",
				Action: func(c *cli.Context) error {
					return draftAction(c, dashboard.ActionReject)
				},
			},
			{
				Name:  "config",
				Usage: "Save the agent configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "label", Usage: "Gmail label to monitor"},
					&cli.StringFlag{Name: "rules", Usage: "Processing rules"},
					&cli.BoolFlag{Name: "require-approval", Value: true, Usage: "Hold drafts for approval"},
				},
				Action: agentConfig,
			},
			{
				Name:  "watch",
				Usage: "Refresh the agent status on a schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "schedule", Usage: "Cron schedule, e.g. @every 30s"},
				},
				Action: agentWatch,
			},
		},
	}
}

func dashboardClient(c *cli.Context) (*dashboard.Client, error) {
	rt, err := fromContext(c)
	if err != nil {
		return nil, err
	}
	return dashboard.NewClient(rt.client, rt.cfg.Backend.BaseURL, rt.log), nil
}

func formatState(s dashboard.AgentState) string {
	return fmt.Sprintf("[%s] %s", s.Indicator, s.Message)
}

func agentStatus(c *cli.Context) error {
	client, err := dashboardClient(c)
	if err != nil {
		return err
	}
	state, err := client.Status(c.Context)
	printf(c, "%s\n", formatState(state))
	return err
}

func agentCommand(c *cli.Context, run func(*dashboard.Client, context.Context) error) error {
	client, err := dashboardClient(c)
	if err != nil {
		return err
	}
	if err := run(client, c.Context); err != nil {
		return err
	}
	return agentStatus(c)
}

func agentLogs(c *cli.Context) error {
	client, err := dashboardClient(c)
	if err != nil {
		return err
	}
	logs, err := client.Logs(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("Error loading logs: %w", err)
	}
	if len(logs) == 0 {
		printf(c, "No recent activity found.\n")
		return nil
	}
	for _, entry := range logs {
		when := "N/A"
		if !entry.Timestamp.IsZero() {
			when = entry.Timestamp.Local().Format("2006-01-02 15:04:05")
		}
		line := fmt.Sprintf("%s  %s", when, orDefault(entry.Action, "Action"))
		if d := entry.EmailDetails; d != nil {
			if d.Subject != "" {
				line += fmt.Sprintf(" Subj: '%s'", truncate(d.Subject, 30))
			}
			if d.To != "" {
				line += " To: " + d.To
			}
		}
		if entry.Error != "" {
			line += fmt.Sprintf(" (%s)", truncate(entry.Error, 50))
		}
		if entry.Status != "" {
			line += " [" + entry.Status + "]"
		}
		printf(c, "%s\n", line)
	}
	return nil
}

func agentDrafts(c *cli.Context) error {
	client, err := dashboardClient(c)
	if err != nil {
		return err
	}
	drafts, err := client.Drafts(c.Context)
	if err != nil {
		return fmt.Errorf("Error loading drafts: %w", err)
	}
	if len(drafts) == 0 {
		printf(c, "No drafts currently awaiting approval.\n")
		return nil
	}
	printf(c, "%d draft(s) awaiting approval\n", len(drafts))
	for _, d := range drafts {
		printf(c, "\n%s\n  To: %s\n  Subject: %s\n", d.ID, orDefault(d.EmailDetails.To, "N/A"), orDefault(d.EmailDetails.Subject, "N/A"))
		for _, line := range strings.Split(strings.TrimSpace(d.EmailDetails.Body), "\n") {
			printf(c, "  | %s\n", line)
		}
	}
	return nil
}

func draftAction(c *cli.Context, action string) error {
	client, err := dashboardClient(c)
	if err != nil {
		return err
	}
	id := c.Args().First()
	if err := client.DraftAction(c.Context, id, action); err != nil {
		return err
	}
	printf(c, "Draft %s: %sd.\n", id, action)
	return nil
}

func agentConfig(c *cli.Context) error {
	client, err := dashboardClient(c)
	if err != nil {
		return err
	}
	err = client.SaveConfig(c.Context, dashboard.AgentConfig{
		MonitorLabel:    c.String("label"),
		ProcessingRules: c.String("rules"),
		RequireApproval: c.Bool("require-approval"),
	})
	if err != nil {
		return fmt.Errorf("Error: %w", err)
	}
	printf(c, "Configuration Saved!\n")
	return nil
}

func agentWatch(c *cli.Context) error {
	rt, err := fromContext(c)
	if err != nil {
		return err
	}
	client := dashboard.NewClient(rt.client, rt.cfg.Backend.BaseURL, rt.log)

	schedule := rt.cfg.Agent.Refresh
	if c.IsSet("schedule") {
		schedule = c.String("schedule")
	}

	term := render.NewTerminal(c.App.Writer, 0)
	refresh := func() {
		state, err := client.Status(c.Context)
		term.ShowStatus(formatState(state), state.Indicator == dashboard.IndicatorError)
		if err != nil {
			term.ShowStatus(err.Error(), true)
		}
	}

	sched := cron.New()
	if _, err := sched.AddFunc(schedule, refresh); err != nil {
		return fmt.Errorf("agent refresh schedule %q: %w", schedule, err)
	}

	term.ShowStatus(formatState(dashboard.Connecting()), false)
	refresh()
	sched.Start()
	<-c.Context.Done()
	<-sched.Stop().Done()
	return nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
