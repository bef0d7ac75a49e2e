package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/dastanaron/bookmarks/internal/service"
)

// ClearDoublesCommand handles removal of duplicate bookmarks
type ClearDoublesCommand struct {
	svc *service.DashboardService
	out io.Writer
}

// NewClearDoublesCommand creates a new clear doubles command
func NewClearDoublesCommand(svc *service.DashboardService, out io.Writer) *ClearDoublesCommand {
	return &ClearDoublesCommand{svc: svc, out: out}
}

// Execute removes duplicate bookmarks (keeps the first one in dashboard order)
func (c *ClearDoublesCommand) Execute(ctx context.Context) (int, error) {
	removed, err := c.svc.RemoveDuplicateURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to remove duplicates: %w", err)
	}

	if len(removed) == 0 {
		fmt.Fprintln(c.out, "No duplicate bookmarks found.")
		return 0, nil
	}
	for _, b := range removed {
		fmt.Fprintf(c.out, "Removed duplicate: '%s' (%s)\n", b.Title, b.URL)
	}
	fmt.Fprintf(c.out, "Deleted %d duplicate bookmark(s).\n", len(removed))
	return len(removed), nil
}
