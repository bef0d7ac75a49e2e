package parser

import (
	"io"
	"strings"

	"github.com/dastanaron/bookmarks/internal/models"

	"golang.org/x/net/html"
)

// UnsortedCategory receives links that sit outside any folder
const UnsortedCategory = "Unsorted"

// CategorySeparator joins the names of nested folders
const CategorySeparator = " / "

// Entry is one imported link and the category it belongs to.
// Bookmark.CategoryID is left empty; the importer resolves Category.
type Entry struct {
	Category        string
	CategoryPrivate bool
	Bookmark        models.BookmarkInput
}

type folderRec struct {
	name    string
	private bool
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "dl" || c.Data == "dt") {
				continue
			}
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}

// ParseBookmarksHTML parses a Netscape bookmark file. Every <H3> folder becomes a
// category named after its path; PRIVATE="1" marks private folders and links.
func ParseBookmarksHTML(r io.Reader) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var folderStack []folderRec
	lastLink := -1

	current := func() (string, bool) {
		if len(folderStack) == 0 {
			return UnsortedCategory, false
		}
		names := make([]string, len(folderStack))
		private := false
		for i, f := range folderStack {
			names[i] = f.name
			private = private || f.private
		}
		return strings.Join(names, CategorySeparator), private
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h3":
				// Found folder header <H3 ...>
				lastLink = -1
				if name := text(n); name != "" {
					folderStack = append(folderStack, folderRec{name: name, private: attr(n, "private") == "1"})
				}
			case "a":
				url := strings.TrimSpace(attr(n, "href"))
				if url == "" {
					break
				}
				category, private := current()
				title := text(n)
				if title == "" {
					title = url
				}
				entries = append(entries, Entry{
					Category:        category,
					CategoryPrivate: private,
					Bookmark: models.BookmarkInput{
						Title:     title,
						URL:       url,
						IconURL:   attr(n, "icon"),
						IsPrivate: attr(n, "private") == "1",
					},
				})
				lastLink = len(entries) - 1
			case "dd":
				// <DD> carries the description of the link right before it
				if lastLink >= 0 && entries[lastLink].Bookmark.Description == "" {
					entries[lastLink].Bookmark.Description = text(n)
				}
				lastLink = -1
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		// When exiting DL container - "close" current folder
		if n.Type == html.ElementNode && n.Data == "dl" && len(folderStack) > 0 {
			folderStack = folderStack[:len(folderStack)-1]
		}
	}

	walk(doc)
	return entries, nil
}
