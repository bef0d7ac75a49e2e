package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dastanaron/bookmarks/internal/dashboard"
	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/session"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	ModeNormal = 1
	ModeSearch = 2
	ModeForm   = 3
	ModeModal  = 4
)

// App represents the TUI application
type App struct {
	ctx     context.Context
	ctrl    *dashboard.Controller
	app     *tview.Application
	pages   *tview.Pages
	board   *tview.Flex
	detail  *tview.TextView
	search  *tview.InputField
	status  *tview.TextView
	mode    uint8
	query   string
	columns []Column
	lists   []*tview.List
	focus   int // index of the focused column

	form     tview.Primitive
	formName string
}

// NewApp creates a new application instance
func NewApp(ctx context.Context, ctrl *dashboard.Controller) *App {
	return &App{
		ctx:    ctx,
		ctrl:   ctrl,
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		board:  tview.NewFlex(),
		detail: tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		search: tview.NewInputField().SetLabel("Search: "),
		status: tview.NewTextView().SetDynamicColors(true),
		mode:   ModeNormal,
	}
}

// Run starts the application and blocks until it quits
func (a *App) Run() error {
	a.board.SetBorder(true).SetTitle("Dashboard")
	a.detail.SetBorder(true).SetTitle("Details")

	cols := tview.NewFlex().
		AddItem(a.board, 0, 4, true).
		AddItem(a.detail, 0, 1, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.search, 1, 0, false).
		AddItem(cols, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	a.pages.AddPage("main", main, true, true)

	a.search.SetChangedFunc(a.onSearchChange)
	a.search.SetDoneFunc(a.onSearchDone)

	unsubscribe := a.ctrl.Store().Subscribe(func(models.Dataset) {
		// observers may run on the UI goroutine, so never block here
		go a.app.QueueUpdateDraw(a.render)
	})
	defer unsubscribe()
	defer a.ctrl.Close()

	a.app.SetRoot(a.pages, true)
	a.app.SetInputCapture(a.globalInput)
	a.render()

	a.async(func() error { return a.ctrl.Start(a.ctx) })
	return a.app.Run()
}

// async runs fn off the UI goroutine and shows its error, if any
func (a *App) async(fn func() error) {
	go func() {
		if err := fn(); err != nil {
			a.app.QueueUpdateDraw(func() { a.showError(dashboard.UserMessage(err)) })
		}
	}()
}

// render rebuilds the board from the store, keeping the selected card where possible
func (a *App) render() {
	selected, hasSelected := a.selectedCard()
	a.columns = BuildColumns(a.ctrl.Store().Snapshot(), a.query)
	dragging, _ := a.ctrl.Dragging()

	a.board.Clear()
	a.lists = a.lists[:0]
	for i, col := range a.columns {
		list := tview.NewList().ShowSecondaryText(true)
		list.SetBorder(true).SetTitle(columnTitle(col.Category))
		for _, b := range col.Cards {
			list.AddItem(cardTitle(b, dragging), b.URL, 0, nil)
		}
		index := i
		list.SetChangedFunc(func(int, string, string, rune) {
			if index == a.focus {
				a.showDetails()
			}
		})
		a.lists = append(a.lists, list)
		a.board.AddItem(list, 0, 1, i == a.focus)
	}

	if a.focus >= len(a.lists) {
		a.focus = len(a.lists) - 1
	}
	if a.focus < 0 {
		a.focus = 0
	}
	if hasSelected {
		a.selectByID(selected.ID)
	}
	if a.mode == ModeNormal {
		a.focusColumn(a.focus)
	}
	a.showDetails()
	a.updateStatus()
}

func (a *App) selectByID(id string) {
	for ci, col := range a.columns {
		for bi, b := range col.Cards {
			if b.ID == id {
				a.focus = ci
				a.lists[ci].SetCurrentItem(bi)
				return
			}
		}
	}
}

func (a *App) focusColumn(i int) {
	if i < 0 || i >= len(a.lists) {
		a.app.SetFocus(a.board)
		return
	}
	a.focus = i
	a.app.SetFocus(a.lists[i])
}

// selectedCard returns the highlighted card of the focused column
func (a *App) selectedCard() (models.Bookmark, bool) {
	if a.focus < 0 || a.focus >= len(a.columns) || a.focus >= len(a.lists) {
		return models.Bookmark{}, false
	}
	cards := a.columns[a.focus].Cards
	i := a.lists[a.focus].GetCurrentItem()
	if i < 0 || i >= len(cards) {
		return models.Bookmark{}, false
	}
	return cards[i], true
}

func (a *App) selectedCategory() (models.Category, bool) {
	if a.focus < 0 || a.focus >= len(a.columns) {
		return models.Category{}, false
	}
	return a.columns[a.focus].Category, true
}

func (a *App) showDetails() {
	b, ok := a.selectedCard()
	if !ok {
		a.detail.SetText("")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[yellow]%s[-]\n\n", tview.Escape(b.Title))
	fmt.Fprintf(&sb, "[green]URL:[-] %s\n", tview.Escape(b.URL))
	if b.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", tview.Escape(b.Description))
	}
	if b.IconURL != "" {
		fmt.Fprintf(&sb, "\n[green]Icon:[-] %s\n", tview.Escape(b.IconURL))
	}
	if b.IsPrivate {
		fmt.Fprintf(&sb, "\n%s private\n", lockGlyph)
	}
	if !b.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "\n[gray]Updated %s[-]\n", b.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	a.detail.SetText(sb.String())
}

func (a *App) updateStatus() {
	cards := 0
	for _, col := range a.columns {
		cards += len(col.Cards)
	}

	mode := "anonymous"
	if a.ctrl.Effective() == session.Elevated {
		mode = "[green]admin[-]"
	}

	hint := "o:open /:search l:login r:reload q:quit"
	if a.ctrl.Capability() == session.Elevated {
		hint = "m:move o:open /:search a/A:add e/E:edit d/D:delete L:logout r:reload q:quit"
	}
	if id, ok := a.ctrl.Dragging(); ok {
		title := id
		if b, found := a.ctrl.Store().Bookmark(id); found {
			title = b.Title
		}
		hint = fmt.Sprintf("[yellow]moving %s[-]: Enter drop on highlighted card, Esc cancel", tview.Escape(title))
	}

	a.status.SetText(fmt.Sprintf(" %d categories, %d bookmarks | %s | %s", len(a.columns), cards, mode, hint))
}

func (a *App) setMode(m uint8) {
	a.mode = m
	switch m {
	case ModeSearch:
		a.app.SetFocus(a.search)
	case ModeNormal:
		a.focusColumn(a.focus)
	}
}

func (a *App) onSearchChange(text string) {
	a.query = text
	a.render()
}

func (a *App) onSearchDone(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		a.setMode(ModeNormal)
	case tcell.KeyEscape:
		a.search.SetText("")
		a.setMode(ModeNormal)
	}
}

func (a *App) requireAdmin() bool {
	if a.ctrl.Capability() != session.Elevated {
		a.showError("Log in (l) to change the dashboard.")
		return false
	}
	return true
}

func (a *App) globalInput(event *tcell.EventKey) *tcell.EventKey {
	if a.mode != ModeNormal {
		// forms, modals and the search field handle their own keys
		return event
	}

	switch event.Key() {
	case tcell.KeyTab, tcell.KeyRight:
		if len(a.lists) > 0 {
			a.focusColumn((a.focus + 1) % len(a.lists))
			a.showDetails()
		}
		return nil
	case tcell.KeyBacktab, tcell.KeyLeft:
		if len(a.lists) > 0 {
			a.focusColumn((a.focus - 1 + len(a.lists)) % len(a.lists))
			a.showDetails()
		}
		return nil
	case tcell.KeyEnter:
		a.drop()
		return nil
	case tcell.KeyEscape:
		if _, ok := a.ctrl.Dragging(); ok {
			a.ctrl.CancelDrag()
			a.render()
		} else if a.query != "" {
			a.search.SetText("")
		}
		return nil
	}

	switch event.Rune() {
	case 'q':
		a.app.Stop()
		return nil
	case '/':
		a.setMode(ModeSearch)
		return nil
	case 'o':
		if b, ok := a.selectedCard(); ok {
			openURL(b.URL)
		}
		return nil
	case 'm':
		// an anonymous reorder could never be saved
		if b, ok := a.selectedCard(); ok && a.requireAdmin() {
			a.ctrl.BeginDrag(b.ID)
			a.render()
		}
		return nil
	case 'r':
		a.async(func() error { return a.ctrl.Reload(a.ctx) })
		return nil
	case 'l':
		a.showLoginForm()
		return nil
	case 'L':
		a.async(func() error { return a.ctrl.Logout(a.ctx) })
		return nil
	case 'a':
		if a.requireAdmin() {
			b := &models.Bookmark{}
			if c, ok := a.selectedCategory(); ok {
				b.CategoryID = c.ID
			}
			a.showBookmarkForm(b, false)
		}
		return nil
	case 'e':
		if b, ok := a.selectedCard(); ok && a.requireAdmin() {
			a.showBookmarkForm(&b, true)
		}
		return nil
	case 'd':
		if b, ok := a.selectedCard(); ok && a.requireAdmin() {
			a.showConfirm(fmt.Sprintf("Delete bookmark '%s'?", b.Title), func() {
				a.async(func() error { return a.ctrl.DeleteBookmark(a.ctx, b.ID) })
			})
		}
		return nil
	case 'A':
		if a.requireAdmin() {
			a.showCategoryForm(&models.Category{}, false)
		}
		return nil
	case 'E':
		if c, ok := a.selectedCategory(); ok && a.requireAdmin() {
			a.showCategoryForm(&c, true)
		}
		return nil
	case 'D':
		if c, ok := a.selectedCategory(); ok && a.requireAdmin() {
			a.showConfirm(fmt.Sprintf("Delete category '%s' and all its bookmarks?", c.Name), func() {
				a.async(func() error { return a.ctrl.DeleteCategory(a.ctx, c.ID) })
			})
		}
		return nil
	}
	return event
}

// drop ends a move gesture on the highlighted card
func (a *App) drop() {
	if _, ok := a.ctrl.Dragging(); !ok {
		return
	}
	dest, ok := a.selectedCard()
	if !ok {
		a.ctrl.CancelDrag()
		a.render()
		return
	}
	if _, err := a.ctrl.Drop(dest.ID); err != nil {
		a.showError(dashboard.UserMessage(err))
	}
	a.render()
}

func openURL(url string) {
	var cmd string
	var args []string
	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, url)
	_ = exec.Command(cmd, args...).Start()
}
