package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/parser"
	"github.com/dastanaron/bookmarks/internal/service"
)

// ImportCommand handles bookmark import from HTML file
type ImportCommand struct {
	svc *service.DashboardService
	out io.Writer
}

// NewImportCommand creates a new import command
func NewImportCommand(svc *service.DashboardService, out io.Writer) *ImportCommand {
	return &ImportCommand{svc: svc, out: out}
}

// Execute imports bookmarks from HTML file and returns how many were created
func (c *ImportCommand) Execute(ctx context.Context, filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	entries, err := parser.ParseBookmarksHTML(file)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	categories := make(map[string]string)
	imported := 0
	for _, e := range entries {
		categoryID, ok := categories[e.Category]
		if !ok {
			visibility := models.VisibilityPublic
			if e.CategoryPrivate {
				visibility = models.VisibilityPrivate
			}
			category, err := c.svc.EnsureCategory(ctx, e.Category, visibility)
			if err != nil {
				return imported, fmt.Errorf("failed to create category %q: %w", e.Category, err)
			}
			categoryID = category.ID
			categories[e.Category] = categoryID
		}

		in := e.Bookmark
		in.CategoryID = categoryID
		if _, err := c.svc.CreateBookmark(ctx, in); err != nil {
			fmt.Fprintf(c.out, "Warning: failed to import bookmark '%s': %v\n", in.Title, err)
			continue
		}
		imported++
	}

	fmt.Fprintf(c.out, "Imported %d bookmarks.\n", imported)
	return imported, nil
}
