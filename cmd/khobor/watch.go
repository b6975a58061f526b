package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Adda-Baaj/khobor-desk/internal/feed"
	"github.com/Adda-Baaj/khobor-desk/internal/render"
	"github.com/Adda-Baaj/khobor-desk/internal/store"
	"github.com/Adda-Baaj/khobor-desk/internal/summary"
)

const watchHelp = `commands:
  search <text>   fetch articles matching text (empty for any)
  region <codes>  restrict to source countries, e.g. in,us
  refresh         fetch again with the current query
  list            number the notifications
  open <n>        show notification n as the main article
  read            summarize the main article and read it aloud
  stop            stop reading
  quit            leave`

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow the live feed and its notifications",
		Description: `Fetches the feed once, then polls it on an interval. New articles
appear as notifications; type commands on stdin to search, open an
article or have its summary read aloud.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Initial search text"},
			&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Usage: "Comma separated source country codes"},
			&cli.DurationFlag{Name: "interval", Usage: "Poll interval"},
			&cli.StringFlag{Name: "journal", Usage: "Notification journal file"},
			&cli.BoolFlag{Name: "resume", Usage: "Restore notifications from the journal"},
		},
		Action: runWatch,
	}
}

func runWatch(c *cli.Context) error {
	rt, err := fromContext(c)
	if err != nil {
		return err
	}
	cfg := rt.cfg
	if c.IsSet("interval") {
		cfg.News.PollInterval = c.Duration("interval")
	}
	if c.IsSet("region") {
		cfg.News.Region = c.String("region")
	}
	if c.IsSet("journal") {
		cfg.Store.Path = c.String("journal")
	}
	if c.IsSet("resume") {
		cfg.Store.Resume = c.Bool("resume")
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	source, err := rt.newSource(cfg)
	if err != nil {
		return err
	}

	term := render.NewTerminal(c.App.Writer, 0)
	renderers := []feed.Renderer{term}

	var journal *store.Journal
	if cfg.Store.Path != "" {
		journal, err = store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer journal.Close()
		renderers = append(renderers, render.NewJournal(journal, time.Now, rt.log))
	}

	dispatcher, err := rt.newDispatcher(ctx, cfg)
	if err != nil {
		return err
	}
	var publishing *render.Publishing
	if dispatcher != nil {
		defer rt.closeDispatcher(dispatcher)
		publishing = render.NewPublishing(dispatcher, time.Now, rt.log)
		renderers = append(renderers, publishing)
	}

	ctrl, err := feed.New(feed.Options{
		Source:       source,
		Renderer:     render.NewMulti(renderers...),
		Summarizer:   summary.NewClient(rt.client, cfg.Backend.BaseURL, rt.log),
		Speaker:      rt.newSpeaker(cfg),
		Logger:       rt.log,
		Limit:        cfg.News.NotificationLimit,
		DefaultQuery: defaultQuery(cfg),
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if journal != nil && cfg.Store.Resume {
		entries, err := journal.List()
		if err != nil {
			return err
		}
		if publishing != nil {
			publishing.SetPaused(true)
		}
		ctrl.Seed(store.Items(entries))
		if publishing != nil {
			publishing.SetPaused(false)
		}
		rt.log.InfoObj("notifications restored", "journal_resume", map[string]any{"count": len(entries)})
	}

	initial := defaultQuery(cfg)
	if c.IsSet("query") {
		initial.Text = c.String("query")
	}
	ctrl.FetchAndApply(ctx, initial, true)

	if err := ctrl.StartPolling(ctx, cfg.News.PollInterval); err != nil {
		return err
	}

	s := &session{ctrl: ctrl, term: term, out: c.App.Writer}
	fmt.Fprintln(s.out, watchHelp)
	return s.run(ctx, c.App.Reader)
}

// session drives a controller from typed commands.
type session struct {
	ctrl *feed.Controller
	term *render.Terminal
	out  io.Writer
}

type action struct {
	verb string
	arg  string
}

func parseLine(line string) action {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	return action{verb: strings.ToLower(verb), arg: strings.TrimSpace(arg)}
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := s.dispatch(ctx, parseLine(line))
			if err != nil {
				s.term.ShowStatus(err.Error(), true)
			}
			if quit {
				return nil
			}
		}
	}
}

func (s *session) dispatch(ctx context.Context, a action) (bool, error) {
	switch a.verb {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, watchHelp)
		return false, nil
	case "search", "s":
		q := s.ctrl.Query()
		q.Text = a.arg
		return false, s.ctrl.Handle(ctx, feed.Search(q))
	case "region":
		q := s.ctrl.Query()
		q.Region = a.arg
		return false, s.ctrl.Handle(ctx, feed.Search(q))
	case "refresh", "r":
		return false, s.ctrl.Handle(ctx, feed.Search(s.ctrl.Query()))
	case "list", "ls":
		s.term.ShowList(s.ctrl.Notifications())
		return false, nil
	case "open", "o":
		return false, s.open(ctx, a.arg)
	case "read":
		go s.read(ctx)
		return false, nil
	case "stop":
		return false, s.ctrl.Handle(ctx, feed.StopReading())
	default:
		return false, fmt.Errorf("unknown command %q, type help", a.verb)
	}
}

func (s *session) open(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("open needs a notification number, got %q", arg)
	}
	notes := s.ctrl.Notifications()
	if n < 1 || n > len(notes) {
		return fmt.Errorf("no notification %d (have %d)", n, len(notes))
	}
	return s.ctrl.Handle(ctx, feed.SelectItem(notes[n-1].URL))
}

// read runs in the background so stop can be typed while the summary is
// pending. Failures other than a refused start are already rendered.
func (s *session) read(ctx context.Context) {
	err := s.ctrl.Handle(ctx, feed.Summarize())
	switch {
	case errors.Is(err, feed.ErrReadingBusy):
		s.term.ShowStatus("Already reading; type stop first.", true)
	case errors.Is(err, feed.ErrNothingToRead):
		if _, ok := s.ctrl.Main(); !ok {
			s.term.ShowStatus("No article selected.", true)
		}
	}
}
