package bd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Client wraps the bd CLI binary for reading issues and their dependencies.
type Client struct {
	BdBin  string // path to bd binary (default: "bd")
	DbPath string // --db flag value (optional)
}

// NewClient creates a Client using the given bd binary path and database path.
func NewClient(bdBin, dbPath string) *Client {
	if bdBin == "" {
		bdBin = "bd"
	}
	return &Client{BdBin: bdBin, DbPath: dbPath}
}

func (c *Client) baseArgs() []string {
	if c.DbPath != "" {
		return []string{"--db", c.DbPath}
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	all := append(c.baseArgs(), args...)
	cmd := exec.CommandContext(ctx, c.BdBin, all...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("bd %s: %w\n%s", strings.Join(args, " "), err, string(out))
	}
	return out, nil
}

// RawTask is the JSON structure returned by bd list.
type RawTask struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Priority int      `json:"priority"`
	Type     string   `json:"issue_type"`
	Labels   []string `json:"labels,omitempty"`
	Estimate int      `json:"estimate,omitempty"` // minutes

	// Dependencies are not in bd JSON output; LoadTasks fills them via Deps.
	BlockedBy []string `json:"-"`
	Blocks    []string `json:"-"`
}

// ListOpen returns all open tasks.
func (c *Client) ListOpen(ctx context.Context) ([]RawTask, error) {
	out, err := c.run(ctx, "list", "--json", "--status", "open", "--limit", "0")
	if err != nil {
		return nil, err
	}
	var tasks []RawTask
	if err := json.Unmarshal(out, &tasks); err != nil {
		return nil, fmt.Errorf("parse bd list output: %w", err)
	}
	return tasks, nil
}

// DepListItem is an issue returned by bd dep list --json.
type DepListItem struct {
	ID string `json:"id"`
}

// Deps returns the dependency edges for a task.
// blockedBy = what this task depends on (bd dep list <id> --direction=down)
// blocks = what depends on this task (bd dep list <id> --direction=up)
func (c *Client) Deps(ctx context.Context, id string) (blocks, blockedBy []string, err error) {
	blockedBy, err = c.depList(ctx, id, "down")
	if err != nil {
		return nil, nil, err
	}
	blocks, err = c.depList(ctx, id, "up")
	if err != nil {
		return nil, nil, err
	}
	return blocks, blockedBy, nil
}

func (c *Client) depList(ctx context.Context, id, direction string) ([]string, error) {
	out, err := c.run(ctx, "dep", "list", id, "--direction="+direction, "--json")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// dep list may fail if no deps exist; treat as empty
		out = []byte("[]")
	}
	var items []DepListItem
	if err := json.Unmarshal(out, &items); err != nil {
		return nil, fmt.Errorf("parse bd dep list (%s): %w", direction, err)
	}
	ids := make([]string, 0, len(items))
	for _, d := range items {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
