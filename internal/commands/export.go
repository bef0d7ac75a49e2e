package commands

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"

	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/service"
)

// ExportCommand handles bookmark export to HTML file
type ExportCommand struct {
	svc *service.DashboardService
	out io.Writer
}

// NewExportCommand creates a new export command
func NewExportCommand(svc *service.DashboardService, out io.Writer) *ExportCommand {
	return &ExportCommand{svc: svc, out: out}
}

// Execute exports the full dashboard to HTML file
func (c *ExportCommand) Execute(ctx context.Context, filePath string) error {
	ds, err := c.svc.Dataset(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer file.Close()

	if err := WriteHTML(file, ds); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}

	fmt.Fprintf(c.out, "Exported %d bookmarks to %s\n", len(ds.Bookmarks), filePath)
	return nil
}

// WriteHTML writes ds as a Netscape bookmark file, one folder per category in rank order
func WriteHTML(w io.Writer, ds models.Dataset) error {
	ew := &errWriter{w: w}

	ew.printf("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	ew.printf("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	ew.printf("<TITLE>Bookmarks</TITLE>\n")
	ew.printf("<H1>Bookmarks</H1>\n")
	ew.printf("<DL><p>\n")

	grouped := dataset.GroupBookmarks(ds.Bookmarks)
	for _, category := range dataset.SortCategories(ds.Categories) {
		private := ""
		if category.IsPrivate() {
			private = ` PRIVATE="1"`
		}
		ew.printf("    <DT><H3%s>%s</H3>\n", private, html.EscapeString(category.Name))
		ew.printf("    <DL><p>\n")
		for _, b := range grouped[category.ID] {
			writeBookmark(ew, b)
		}
		ew.printf("    </DL><p>\n")
	}

	ew.printf("</DL><p>\n")
	return ew.err
}

func writeBookmark(ew *errWriter, b models.Bookmark) {
	attrs := fmt.Sprintf(` HREF="%s"`, html.EscapeString(b.URL))
	if b.IconURL != "" {
		attrs += fmt.Sprintf(` ICON="%s"`, html.EscapeString(b.IconURL))
	}
	if b.IsPrivate {
		attrs += ` PRIVATE="1"`
	}
	ew.printf("        <DT><A%s>%s</A>\n", attrs, html.EscapeString(b.Title))
	if b.Description != "" {
		ew.printf("        <DD>%s\n", html.EscapeString(b.Description))
	}
}

// errWriter keeps the first write error
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
