package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Indicator is the coarse agent state shown next to the status text.
type Indicator string

const (
	IndicatorConnecting Indicator = "connecting"
	IndicatorIdle       Indicator = "idle"
	IndicatorRunning    Indicator = "running"
	IndicatorError      Indicator = "error"
)

var errUnknown = errors.New("Unknown error")

// DefaultLogLimit is the number of activity entries requested when none is given.
const DefaultLogLimit = 20

// AgentState is the email agent status as presented to the user.
type AgentState struct {
	Connected  bool
	Monitoring bool
	Message    string
	Indicator  Indicator
}

// CanStart reports whether a start command makes sense.
func (s AgentState) CanStart() bool { return s.Connected && !s.Monitoring }

// CanStop reports whether a stop command makes sense.
func (s AgentState) CanStop() bool { return s.Connected && s.Monitoring }

// Connecting is the state shown while a status request is in flight.
func Connecting() AgentState {
	return AgentState{Message: "Connecting...", Indicator: IndicatorConnecting}
}

type statusResponse struct {
	GmailConnected bool   `json:"gmail_connected"`
	IsMonitoring   bool   `json:"is_monitoring"`
	StatusMessage  string `json:"status_message"`
}

func (r statusResponse) state() AgentState {
	s := AgentState{Connected: r.GmailConnected, Monitoring: r.IsMonitoring}
	s.Message = strings.TrimSpace(r.StatusMessage)
	if s.Message == "" {
		s.Message = "Idle"
		if s.Monitoring {
			s.Message = "Monitoring Inbox"
		}
	}
	switch {
	case s.Monitoring:
		s.Indicator = IndicatorRunning
	case s.Connected:
		s.Indicator = IndicatorIdle
	default:
		s.Indicator = IndicatorError
	}
	if !s.Connected {
		s.Message = "Gmail Not Connected"
	}
	return s
}

// Status fetches the agent status. On failure the returned state is the
// error state and err explains why.
func (c *Client) Status(ctx context.Context) (AgentState, error) {
	failed := AgentState{Message: "Error fetching status", Indicator: IndicatorError}

	res, err := c.api.Request(ctx, http.MethodGet, "/agent/email/status", nil, nil)
	if err != nil {
		c.log.WarnObj("agent status failed", "agent_status_error", map[string]any{"error": err.Error()})
		return failed, err
	}
	var body statusResponse
	if err := res.Decode(&body); err != nil {
		return failed, fmt.Errorf("decode agent status: %w", err)
	}
	return body.state(), nil
}

// Start asks the agent to begin monitoring the inbox.
func (c *Client) Start(ctx context.Context) error {
	return c.command(ctx, "/agent/email/start", "start")
}

// Stop asks the agent to stop monitoring.
func (c *Client) Stop(ctx context.Context) error {
	return c.command(ctx, "/agent/email/stop", "stop")
}

func (c *Client) command(ctx context.Context, path, name string) error {
	if _, err := c.api.Request(ctx, http.MethodPost, path, nil, nil); err != nil {
		c.log.WarnObj("agent command failed", "agent_command_error", map[string]any{
			"command": name,
			"error":   err.Error(),
		})
		return err
	}
	c.log.InfoObj("agent command sent", "agent_command", map[string]any{"command": name})
	return nil
}

// AgentConfig is the agent's processing configuration.
type AgentConfig struct {
	MonitorLabel    string `json:"monitor_label"`
	ProcessingRules string `json:"processing_rules"`
	RequireApproval bool   `json:"require_approval"`
}

// SaveConfig stores cfg on the backend.
func (c *Client) SaveConfig(ctx context.Context, cfg AgentConfig) error {
	cfg.MonitorLabel = strings.TrimSpace(cfg.MonitorLabel)
	cfg.ProcessingRules = strings.TrimSpace(cfg.ProcessingRules)
	_, err := c.api.Request(ctx, http.MethodPost, "/agent/email/config", nil, cfg)
	return err
}

// EmailDetails describes the message an agent action touched.
type EmailDetails struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// LogEntry is one agent activity record.
type LogEntry struct {
	Timestamp    Timestamp     `json:"timestamp"`
	Action       string        `json:"action"`
	Status       string        `json:"status"`
	Error        string        `json:"error"`
	EmailDetails *EmailDetails `json:"email_details"`
}

// Timestamp accepts either a plain date string or a {"$date": ...} wrapper.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(raw []byte) error {
	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return err
		}
		raw = wrapped.Date
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		ms, numErr := strconv.ParseInt(string(raw), 10, 64)
		if numErr != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		t.Time = time.UnixMilli(ms)
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", time.DateTime} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// Logs returns recent agent activity, newest as returned by the backend.
func (c *Client) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	q := url.Values{"limit": []string{strconv.Itoa(limit)}}
	res, err := c.api.Request(ctx, http.MethodGet, "/agent/email/logs", q, nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Logs *[]LogEntry `json:"logs"`
	}
	if err := res.Decode(&body); err != nil {
		return nil, err
	}
	if body.Logs == nil {
		return nil, errUnknown
	}
	return *body.Logs, nil
}

// Draft is a reply awaiting approval.
type Draft struct {
	ID           string        `json:"draft_id"`
	EmailDetails *EmailDetails `json:"email_details"`
}

// Drafts lists drafts awaiting approval. Entries without an id or message
// details are skipped.
func (c *Client) Drafts(ctx context.Context) ([]Draft, error) {
	res, err := c.api.Request(ctx, http.MethodGet, "/agent/email/drafts", nil, nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Drafts *[]Draft `json:"drafts"`
	}
	if err := res.Decode(&body); err != nil {
		return nil, err
	}
	if body.Drafts == nil {
		return nil, errUnknown
	}
	return lo.Filter(*body.Drafts, func(d Draft, _ int) bool {
		return strings.TrimSpace(d.ID) != "" && d.EmailDetails != nil
	}), nil
}

// Draft actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// DraftAction approves or rejects a draft.
func (c *Client) DraftAction(ctx context.Context, id, action string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("draft_id", "Draft ID is required.")
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if !lo.Contains([]string{ActionApprove, ActionReject}, action) {
		return invalid("action", "Unsupported draft action %q.", action)
	}

	path := "/agent/email/drafts/" + url.PathEscape(id) + "/action"
	if _, err := c.api.Request(ctx, http.MethodPost, path, nil, map[string]string{"action": action}); err != nil {
		return err
	}
	c.log.InfoObj("draft action applied", "agent_draft_action", map[string]any{
		"draft_id": id,
		"action":   action,
	})
	return nil
}
