package ui

import (
	"errors"

	"github.com/dastanaron/bookmarks/internal/dashboard"
	"github.com/dastanaron/bookmarks/internal/models"

	"github.com/rivo/tview"
)

// openForm shows form as a page and hands it the focus
func (a *App) openForm(name string, form *tview.Form) {
	a.pages.AddPage(name, form, true, true)
	a.form, a.formName = form, name
	a.app.SetFocus(form)
	a.mode = ModeForm
}

func (a *App) closeForm(name string) {
	if a.formName != name {
		return
	}
	a.pages.RemovePage(name)
	a.form, a.formName = nil, ""
	a.setMode(ModeNormal)
}

// submit runs fn in the background. The form closes on success, and also when the
// change was applied but the reload after it failed, so it cannot be sent twice.
func (a *App) submit(name string, fn func() error) {
	go func() {
		err := fn()
		a.app.QueueUpdateDraw(func() {
			var reloadErr *dashboard.ReloadError
			if err == nil || errors.As(err, &reloadErr) {
				a.closeForm(name)
			}
			if err != nil {
				a.showError(dashboard.UserMessage(err))
			}
		})
	}()
}

func (a *App) showLoginForm() {
	const page = "login"
	password := ""

	form := tview.NewForm()
	form.AddPasswordField("Password", "", 40, '*', func(t string) { password = t })
	form.AddButton("Login", func() {
		pw := password
		a.submit(page, func() error { return a.ctrl.Login(a.ctx, pw) })
	})
	form.AddButton("Cancel", func() { a.closeForm(page) })

	form.SetBorder(true).SetTitle("Admin login")
	a.openForm(page, form)
}

func (a *App) showBookmarkForm(b *models.Bookmark, edit bool) {
	const page = "form"
	in := models.BookmarkInput{
		CategoryID:  b.CategoryID,
		Title:       b.Title,
		URL:         b.URL,
		Description: b.Description,
		IconURL:     b.IconURL,
		IsPrivate:   b.IsPrivate,
	}

	categories := a.ctrl.Store().CategoriesSorted()
	options := make([]string, len(categories))
	selected := 0
	for i, c := range categories {
		options[i] = columnTitle(c)
		if c.ID == in.CategoryID {
			selected = i
		}
	}
	if len(categories) > 0 && in.CategoryID == "" {
		in.CategoryID = categories[0].ID
	}

	form := tview.NewForm()
	form.AddInputField("Title", in.Title, 60, nil, func(t string) { in.Title = t })
	form.AddInputField("URL", in.URL, 60, nil, func(t string) { in.URL = t })
	form.AddInputField("Description", in.Description, 60, nil, func(t string) { in.Description = t })
	form.AddInputField("Icon URL", in.IconURL, 60, nil, func(t string) { in.IconURL = t })
	form.AddDropDown("Category", options, selected, func(_ string, index int) {
		if index >= 0 && index < len(categories) {
			in.CategoryID = categories[index].ID
		}
	})
	form.AddCheckbox("Private", in.IsPrivate, func(checked bool) { in.IsPrivate = checked })

	form.AddButton("Save", func() {
		// rejected inputs never reach the backend
		if err := in.Validate(); err != nil {
			a.showError(dashboard.UserMessage(err))
			return
		}
		payload := in
		a.submit(page, func() error {
			if edit {
				return a.ctrl.EditBookmark(a.ctx, b.ID, payload)
			}
			return a.ctrl.AddBookmark(a.ctx, payload)
		})
	})
	form.AddButton("Cancel", func() { a.closeForm(page) })

	title := "New bookmark"
	if edit {
		title = "Edit bookmark"
	}
	form.SetBorder(true).SetTitle(title)
	a.openForm(page, form)
}

func (a *App) showCategoryForm(c *models.Category, edit bool) {
	const page = "categoryForm"
	in := models.CategoryInput{Name: c.Name, Visibility: c.Visibility}

	form := tview.NewForm()
	form.AddInputField("Name", in.Name, 40, nil, func(t string) { in.Name = t })
	form.AddCheckbox("Private", c.IsPrivate(), func(checked bool) {
		in.Visibility = models.VisibilityPublic
		if checked {
			in.Visibility = models.VisibilityPrivate
		}
	})

	form.AddButton("Save", func() {
		if err := in.Validate(); err != nil {
			a.showError(dashboard.UserMessage(err))
			return
		}
		payload := in
		a.submit(page, func() error {
			if edit {
				return a.ctrl.EditCategory(a.ctx, c.ID, payload)
			}
			return a.ctrl.AddCategory(a.ctx, payload)
		})
	})
	form.AddButton("Cancel", func() { a.closeForm(page) })

	title := "New category"
	if edit {
		title = "Edit category"
	}
	form.SetBorder(true).SetTitle(title)
	a.openForm(page, form)
}

// restoreFocus returns to the open form, or to the board when there is none
func (a *App) restoreFocus() {
	if a.form != nil {
		a.mode = ModeForm
		a.app.SetFocus(a.form)
		return
	}
	a.setMode(ModeNormal)
}

func (a *App) showError(message string) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("error")
			a.restoreFocus()
		})

	modal.SetBorder(true).SetTitle("Error")
	a.pages.AddPage("error", modal, true, true)
	a.mode = ModeModal
	a.app.SetFocus(modal)
}

func (a *App) showConfirm(message string, onConfirm func()) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"Cancel", "OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("confirm")
			a.restoreFocus()
			if buttonIndex == 1 && onConfirm != nil {
				onConfirm()
			}
		})

	modal.SetBorder(true).SetTitle("Confirm")
	a.pages.AddPage("confirm", modal, true, true)
	a.mode = ModeModal
	a.app.SetFocus(modal)
}
