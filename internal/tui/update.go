package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/datatable/internal/mainloop"
	"github.com/jask/datatable/internal/watch"
)

type (
	statusMsg string
	errMsg    struct{ error }
	countsMsg struct{ total, uncategorized int }
	watchMsg  watch.Event
)

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCounts(), a.waitForWatch(), a.queue.DrainCmd())
}

// Update handles msg with the main queue marked current, so row handlers
// and director calls made while handling it run on the main queue.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.queue.Run(func() {
		cmd = a.update(msg)
	})
	cmds := append(a.cmds, cmd, a.queue.DrainCmd())
	a.cmds = nil
	return a, tea.Batch(cmds...)
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case mainloop.DrainMsg:
		a.queue.Drain()
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.table.SetSize(m.Width, max(m.Height-3, 1))
		a.input.Width = max(m.Width-12, 10)
	case countsMsg:
		a.total, a.uncategorized = m.total, m.uncategorized
		a.dir.Reload()
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.logger.Printf("tui: %v", m.error)
		a.status = "error: " + m.Error()
	case watchMsg:
		a.refresh()
		return a.waitForWatch()
	case tea.KeyMsg:
		if a.mode != modeBrowse {
			return a.handleInputKey(m)
		}
		return a.handleKey(m)
	}
	return nil
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	switch s := m.String(); s {
	case "q", "ctrl+c":
		return tea.Quit
	case "/":
		a.mode = modeFilter
		a.input.Prompt = "filter: "
		a.input.Placeholder = "cat:groceries amt:<-50"
		a.input.SetValue(a.filterExpr)
		a.input.CursorEnd()
		return a.input.Focus()
	case "s":
		a.mode = modeSaveName
		a.input.Prompt = "save as: "
		a.input.Placeholder = "name"
		a.input.SetValue("")
		return a.input.Focus()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		a.applySaved(int(s[0] - '0'))
	case "d":
		a.deleteAtCursor()
	case "r":
		a.refresh()
		a.status = "refreshing"
	case "R":
		if a.svc.Maintenance == nil {
			a.status = "reset is not configured"
			return nil
		}
		a.mode = modeConfirmReset
		a.status = "delete every transaction? [y/N]"
	default:
		return a.table.Update(m)
	}
	return nil
}

func (a *App) handleInputKey(m tea.KeyMsg) tea.Cmd {
	if a.mode == modeConfirmReset {
		a.mode = modeBrowse
		if m.String() == "y" {
			a.status = "resetting"
			return a.resetCmd()
		}
		a.status = ""
		return nil
	}

	switch m.Type {
	case tea.KeyEsc:
		a.mode = modeBrowse
		a.input.Blur()
		return nil
	case tea.KeyEnter:
		value := a.input.Value()
		mode := a.mode
		a.mode = modeBrowse
		a.input.Blur()
		if mode == modeFilter {
			a.applyFilter(value)
		} else {
			a.saveFilter(value)
		}
		return nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return cmd
}

var _ tea.Model = (*App)(nil)
