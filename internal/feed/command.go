package feed

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

// CommandKind enumerates the user and timer actions a controller accepts.
type CommandKind int

const (
	CommandSearch CommandKind = iota + 1
	CommandPoll
	CommandSelectItem
	CommandSummarize
	CommandStopReading
)

func (k CommandKind) String() string {
	switch k {
	case CommandSearch:
		return "search"
	case CommandPoll:
		return "poll"
	case CommandSelectItem:
		return "select"
	case CommandSummarize:
		return "summarize"
	case CommandStopReading:
		return "stop-reading"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is one message for Controller.Handle.
type Command struct {
	Kind  CommandKind
	Query domain.Query // Search
	URL   string       // SelectItem
}

// Search builds a manual fetch command.
func Search(q domain.Query) Command { return Command{Kind: CommandSearch, Query: q} }

// Poll builds an automatic fetch command using the current query.
func Poll() Command { return Command{Kind: CommandPoll} }

// SelectItem builds a selection command for a surfaced item.
func SelectItem(url string) Command { return Command{Kind: CommandSelectItem, URL: url} }

// Summarize builds a summarize-and-read command for the main selection.
func Summarize() Command { return Command{Kind: CommandSummarize} }

// StopReading builds a stop-reading command.
func StopReading() Command { return Command{Kind: CommandStopReading} }

// Handle dispatches cmd. Fetch failures are rendered, not returned; the
// returned error covers only commands the controller refused.
func (c *Controller) Handle(ctx context.Context, cmd Command) error {
	c.log.DebugObj("handling command", "feed_command", map[string]any{"command": cmd.Kind.String()})

	switch cmd.Kind {
	case CommandSearch:
		c.FetchAndApply(ctx, cmd.Query, true)
		return nil
	case CommandPoll:
		c.FetchAndApply(ctx, c.Query(), false)
		return nil
	case CommandSelectItem:
		return c.SelectURL(cmd.URL)
	case CommandSummarize:
		item, ok := c.Main()
		if !ok {
			return ErrNothingToRead
		}
		return c.SummarizeAndRead(ctx, item)
	case CommandStopReading:
		c.StopReading()
		return nil
	default:
		return fmt.Errorf("unsupported command %s", cmd.Kind)
	}
}
